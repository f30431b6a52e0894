package cli

import (
	"fmt"
	"math"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/aerogramlab/aerogram/pkg/ingest"
	"github.com/aerogramlab/aerogram/pkg/sounding"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// levelsCommand creates the levels command for browsing a sounding interactively.
func (c *CLI) levelsCommand() *cobra.Command {
	var (
		station string
		missing string
	)

	cmd := &cobra.Command{
		Use:   "levels [sounding.csv]",
		Short: "Browse sounding levels in an interactive table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := sounding.ParseMissingPolicy(missing)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open sounding %s: %w", args[0], err)
			}
			defer f.Close()

			snd, err := ingest.ReadCSV(f, ingest.ImportOptions{Station: station, Policy: policy})
			if err != nil {
				return fmt.Errorf("parse sounding %s: %w", args[0], err)
			}

			model := newLevelListModel(snd)
			_, err = tea.NewProgram(model, tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().StringVar(&station, "station", "", "station identifier")
	cmd.Flags().StringVar(&missing, "missing", "", "missing data policy: skip (default), fail")

	return cmd
}

// levelListModel is the bubbletea model for browsing sounding levels.
type levelListModel struct {
	station string
	levels  []sounding.Level
	cursor  int
	offset  int
	height  int
}

func newLevelListModel(snd *sounding.Profile) levelListModel {
	return levelListModel{
		station: snd.Station,
		levels:  snd.Levels,
		height:  15,
	}
}

func (m levelListModel) Init() tea.Cmd {
	return nil
}

func (m levelListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.levels)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "g", "home":
			m.cursor = 0
			m.offset = 0
		case "G", "end":
			m.cursor = len(m.levels) - 1
			if m.cursor >= m.height {
				m.offset = m.cursor - m.height + 1
			}
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 8
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m levelListModel) View() string {
	var b strings.Builder

	title := "Sounding Levels"
	if m.station != "" {
		title += " · " + m.station
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  g/G top/bottom  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.levels) {
		end = len(m.levels)
	}

	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		lv := m.levels[i]

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		wind := "M"
		if lv.HasWind() {
			wind = fmt.Sprintf("%.1f / %.1f", lv.U, lv.V)
		}

		rows = append(rows, []string{
			cursor,
			formatSample(lv.Pressure, "%.1f"),
			formatSample(lv.Height, "%.0f"),
			formatSample(lv.Temperature, "%.1f"),
			formatSample(lv.Dewpoint, "%.1f"),
			wind,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "hPa", "m", "T °C", "Td °C", "u/v m/s").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.offset+row == m.cursor {
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.levels))))

	return b.String()
}

// formatSample formats a level field, printing missing samples as "M".
func formatSample(v float64, format string) string {
	if math.IsNaN(v) {
		return "M"
	}
	return fmt.Sprintf(format, v)
}
