package viz

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/photonrlc/internal/automation"
	"github.com/san-kum/photonrlc/internal/experiment"
)

type TickMsg time.Time

// TrialMsg reports one finished trial.
type TrialMsg experiment.TrialResult

// DoneMsg ends the batch.
type DoneMsg struct {
	Report *automation.Report
	Err    error
}

// Progress is a bubbletea model following a batch of trials.
type Progress struct {
	total    int
	done     int
	deltas   []float64
	last     experiment.TrialResult
	started  time.Time
	frame    int
	cancel   context.CancelFunc
	stopping bool

	report *automation.Report
	err    error
}

// NewProgress follows total trials. cancel is called when the user quits.
func NewProgress(total int, cancel context.CancelFunc) Progress {
	return Progress{total: total, cancel: cancel, started: time.Now()}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/10, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Progress) Init() tea.Cmd { return tick() }

func (m Progress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if !m.stopping && m.cancel != nil {
				m.cancel()
			}
			m.stopping = true
		}
	case TickMsg:
		m.frame++
		return m, tick()
	case TrialMsg:
		m.done++
		m.last = experiment.TrialResult(msg)
		m.deltas = append(m.deltas, msg.Delta)
	case DoneMsg:
		m.report, m.err = msg.Report, msg.Err
		return m, tea.Quit
	}
	return m, nil
}

func (m Progress) View() string {
	var b strings.Builder

	status := StatusRunning.Render(Spinner(m.frame) + " running")
	if m.stopping {
		status = StatusFailed.Render("stopping")
	}
	b.WriteString(Title.Render("photon-perturbed RLC") + "  " + status + "\n\n")

	pct := 0.0
	if m.total > 0 {
		pct = float64(m.done) / float64(m.total)
	}
	b.WriteString(fmt.Sprintf("%s %d/%d  %s\n\n", ProgressBar(pct, 40), m.done, m.total,
		Subtle.Render(time.Since(m.started).Round(100*time.Millisecond).String())))

	if m.done > 0 {
		b.WriteString(MetricLabel.Render("last") + MetricValue.Render(fmt.Sprintf("trial %d  ΔE %.4e", m.last.Index, m.last.Delta)) + "\n")
		b.WriteString(MetricLabel.Render("segments") + MetricValue.Render(fmt.Sprintf("%d  photons %d  attempts %d", m.last.Segments, m.last.Photons, m.last.Attempts)) + "\n")
		b.WriteString(MetricLabel.Render("deltas") + Sparkline(m.deltas, 40) + "\n")
	}

	b.WriteString("\n" + KeyHint.Render("q: stop") + "\n")
	return Panel.Render(b.String())
}

// Result returns the batch outcome once DoneMsg has arrived.
func (m Progress) Result() (*automation.Report, error) {
	return m.report, m.err
}

// RunLive runs the trials of p behind a progress view on the terminal.
func RunLive(ctx context.Context, p experiment.Params, opts ...automation.Option) (*automation.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	prog := tea.NewProgram(NewProgress(p.Trials, cancel), tea.WithContext(ctx))

	done := make(chan DoneMsg, 1)
	go func() {
		opts = append(opts, automation.WithProgress(func(r experiment.TrialResult) {
			prog.Send(TrialMsg(r))
		}))
		rep, err := automation.RunTrials(ctx, p, opts...)
		msg := DoneMsg{Report: rep, Err: err}
		done <- msg
		prog.Send(msg)
	}()

	final, runErr := prog.Run()
	if m, ok := final.(Progress); ok && (m.report != nil || m.err != nil) {
		return m.Result()
	}

	// The view went away before the batch finished.
	cancel()
	msg := <-done
	if msg.Err == nil && runErr != nil && msg.Report == nil {
		return nil, runErr
	}
	return msg.Report, msg.Err
}
