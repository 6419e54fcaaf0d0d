package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gomp7100/pkg/config"
	"github.com/itohio/gomp7100/pkg/scpi"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
// Display changes apply immediately; the rest is saved for the next start,
// since the poll goroutine owns the device and timing settings.
func showSettingsDialog(state *appState) {
	saved := settingsCopy(state)

	tabs := container.NewAppTabs(
		createDeviceTab(state, saved),
		createDisplayTab(state, saved),
		createPollTab(state, saved),
		createOutputTab(state, saved),
		createMockTab(state, saved),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(500, 400))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(500, 400))
	d.Show()
}

// settingsCopy returns the configuration file contents for editing.
// Command line overrides such as -mock or -p stay out of the saved file.
func settingsCopy(state *appState) *config.Config {
	saved := *state.fileCfg
	return &saved
}

// saveSettings writes saved to the configuration file.
func saveSettings(state *appState, saved *config.Config) {
	if err := saved.Save(state.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
		return
	}
	*state.fileCfg = *saved
}

// createDeviceTab creates the Device configuration tab.
func createDeviceTab(state *appState, saved *config.Config) *container.TabItem {
	// Get available ports
	ports, err := scpi.Ports()
	portOptions := []string{}
	portMap := make(map[string]string) // Map display name to actual port name

	if err == nil {
		for _, port := range ports {
			displayName := port.Name
			if port.Description != "" && port.Description != port.Name {
				displayName = fmt.Sprintf("%s (%s)", port.Name, port.Description)
			}
			portOptions = append(portOptions, displayName)
			portMap[displayName] = port.Name
		}
	}

	// Add current port if not in list
	currentPort := saved.Device.Port
	currentDisplay := currentPort
	found := false
	for _, opt := range portOptions {
		if portMap[opt] == currentPort {
			currentDisplay = opt
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
		portMap[currentPort] = currentPort
	}

	portSelect := widget.NewSelect(portOptions, nil)
	if currentDisplay != "" {
		portSelect.SetSelected(currentDisplay)
	}

	paramsEntry := widget.NewEntry()
	paramsEntry.SetText(saved.Device.SerialParams)

	timeoutEntry := widget.NewEntry()
	timeoutEntry.SetText(saved.Device.ReadTimeout.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Port", Widget: portSelect},
			{Text: "Serial Parameters", Widget: paramsEntry, HintText: "baud:8n1, applies on next start"},
			{Text: "Read Timeout", Widget: timeoutEntry},
		},
		OnSubmit: func() {
			if portSelect.Selected != "" {
				selectedPort := portMap[portSelect.Selected]
				if selectedPort == "" {
					selectedPort = portSelect.Selected
				}
				saved.Device.Port = selectedPort
			}
			if _, err := scpi.ParseParams(paramsEntry.Text); err != nil {
				dialog.ShowError(err, state.window)
				return
			}
			saved.Device.SerialParams = paramsEntry.Text
			if rt, err := time.ParseDuration(timeoutEntry.Text); err == nil {
				saved.Device.ReadTimeout = rt
			}
			saveSettings(state, saved)
		},
	}

	return container.NewTabItem("Device", form)
}

// createDisplayTab creates the Display configuration tab.
func createDisplayTab(state *appState, saved *config.Config) *container.TabItem {
	fontSizeEntry := widget.NewEntry()
	fontSizeEntry.SetText(strconv.Itoa(saved.Display.FontSize))

	fontWeightEntry := widget.NewEntry()
	fontWeightEntry.SetText(strconv.Itoa(saved.Display.FontWeight))

	voltsEntry := widget.NewEntry()
	voltsEntry.SetText(saved.Display.VoltsColor)

	ampsEntry := widget.NewEntry()
	ampsEntry.SetText(saved.Display.AmpsColor)

	bgEntry := widget.NewEntry()
	bgEntry.SetText(saved.Display.BackgroundColor)

	widthEntry := widget.NewEntry()
	widthEntry.SetText(strconv.Itoa(saved.Display.WindowWidth))

	heightEntry := widget.NewEntry()
	heightEntry.SetText(strconv.Itoa(saved.Display.WindowHeight))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Font Size (pt)", Widget: fontSizeEntry},
			{Text: "Font Weight", Widget: fontWeightEntry},
			{Text: "Volts Colour", Widget: voltsEntry},
			{Text: "Amps Colour", Widget: ampsEntry},
			{Text: "Background Colour", Widget: bgEntry},
			{Text: "Window Width (0=auto)", Widget: widthEntry},
			{Text: "Window Height (0=auto)", Widget: heightEntry},
		},
		OnSubmit: func() {
			d := saved.Display
			if fs, err := strconv.Atoi(fontSizeEntry.Text); err == nil {
				d.FontSize = config.ClampFontSize(fs)
			}
			if fw, err := strconv.Atoi(fontWeightEntry.Text); err == nil {
				d.FontWeight = fw
			}
			for _, c := range []struct {
				entry *widget.Entry
				dst   *string
			}{
				{voltsEntry, &d.VoltsColor},
				{ampsEntry, &d.AmpsColor},
				{bgEntry, &d.BackgroundColor},
			} {
				if _, err := config.ParseColor(c.entry.Text); err != nil {
					dialog.ShowError(err, state.window)
					return
				}
				*c.dst = c.entry.Text
			}
			if w, err := strconv.Atoi(widthEntry.Text); err == nil && w >= 0 {
				d.WindowWidth = w
			}
			if h, err := strconv.Atoi(heightEntry.Text); err == nil && h >= 0 {
				d.WindowHeight = h
			}

			saved.Display = d
			state.cfg.Display = d
			setReadout(state)
			if state.out != nil {
				if err := state.out.SetDisplay(&d); err != nil {
					dialog.ShowError(fmt.Errorf("failed to update overlay: %w", err), state.window)
				}
			}
			saveSettings(state, saved)
		},
	}

	return container.NewTabItem("Display", form)
}

// createPollTab creates the Poll configuration tab.
func createPollTab(state *appState, saved *config.Config) *container.TabItem {
	intervalEntry := widget.NewEntry()
	intervalEntry.SetText(saved.Poll.Interval.String())

	queryDelayEntry := widget.NewEntry()
	queryDelayEntry.SetText(saved.Poll.QueryDelay.String())

	backoffEntry := widget.NewEntry()
	backoffEntry.SetText(saved.Poll.ErrorBackoff.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Interval", Widget: intervalEntry, HintText: "applies on next start"},
			{Text: "Query Delay", Widget: queryDelayEntry},
			{Text: "Error Backoff", Widget: backoffEntry},
		},
		OnSubmit: func() {
			if iv, err := time.ParseDuration(intervalEntry.Text); err == nil {
				saved.Poll.Interval = iv
			}
			if qd, err := time.ParseDuration(queryDelayEntry.Text); err == nil {
				saved.Poll.QueryDelay = qd
			}
			if eb, err := time.ParseDuration(backoffEntry.Text); err == nil {
				saved.Poll.ErrorBackoff = eb
			}
			saveSettings(state, saved)
		},
	}

	return container.NewTabItem("Poll", form)
}

// createOutputTab creates the Output configuration tab.
func createOutputTab(state *appState, saved *config.Config) *container.TabItem {
	fileEntry := widget.NewEntry()
	fileEntry.SetText(saved.Output.File)

	refreshCheck := widget.NewCheck("", nil)
	refreshCheck.SetChecked(saved.Output.Refresh)

	imageEntry := widget.NewEntry()
	imageEntry.SetText(saved.Output.Image)

	fbEntry := widget.NewEntry()
	fbEntry.SetText(saved.Output.Framebuffer)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Text File", Widget: fileEntry, HintText: "applies on next start"},
			{Text: "Rewrite On Change", Widget: refreshCheck},
			{Text: "PNG File", Widget: imageEntry},
			{Text: "Framebuffer", Widget: fbEntry},
		},
		OnSubmit: func() {
			saved.Output.File = fileEntry.Text
			saved.Output.Refresh = refreshCheck.Checked
			saved.Output.Image = imageEntry.Text
			saved.Output.Framebuffer = fbEntry.Text
			saveSettings(state, saved)
		},
	}

	return container.NewTabItem("Output", form)
}

// createMockTab creates the Mock device configuration tab.
func createMockTab(state *appState, saved *config.Config) *container.TabItem {
	voltageEntry := widget.NewEntry()
	voltageEntry.SetText(fmt.Sprintf("%.3f", saved.Mock.Voltage))

	currentEntry := widget.NewEntry()
	currentEntry.SetText(fmt.Sprintf("%.3f", saved.Mock.Current))

	noiseEntry := widget.NewEntry()
	noiseEntry.SetText(fmt.Sprintf("%.6f", saved.Mock.Noise))

	failEveryEntry := widget.NewEntry()
	failEveryEntry.SetText(strconv.Itoa(saved.Mock.FailEvery))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Voltage (V)", Widget: voltageEntry},
			{Text: "Current (A)", Widget: currentEntry},
			{Text: "Noise", Widget: noiseEntry},
			{Text: "Fail Every N Queries (0=never)", Widget: failEveryEntry},
		},
		OnSubmit: func() {
			if v, err := strconv.ParseFloat(voltageEntry.Text, 64); err == nil {
				saved.Mock.Voltage = v
			}
			if c, err := strconv.ParseFloat(currentEntry.Text, 64); err == nil {
				saved.Mock.Current = c
			}
			if n, err := strconv.ParseFloat(noiseEntry.Text, 64); err == nil {
				saved.Mock.Noise = n
			}
			if fe, err := strconv.Atoi(failEveryEntry.Text); err == nil && fe >= 0 {
				saved.Mock.FailEvery = fe
			}
			saveSettings(state, saved)
		},
	}

	return container.NewTabItem("Mock", form)
}
