package route

import tea "github.com/charmbracelet/bubbletea"

// NavigateMsg asks the root model to open Path. The guard still decides
// where navigation ends up.
type NavigateMsg struct {
	Path string
}

// BackMsg asks the root model to return to the previous path.
type BackMsg struct{}

// Navigate returns a command that emits a NavigateMsg for path.
func Navigate(path string) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Path: path} }
}

// Back returns a command that emits a BackMsg.
func Back() tea.Cmd {
	return func() tea.Msg { return BackMsg{} }
}
