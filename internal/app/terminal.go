package launcher

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var isTerminalFn = defaultIsTerminal

func defaultIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func colorEnabled(w io.Writer) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	return isTerminalFn(w)
}

func newPainter(w io.Writer, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if colorEnabled(w) {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func printBanner(w io.Writer, plan *launchPlan) {
	title := newPainter(w, color.FgCyan, color.Bold)
	key := newPainter(w, color.Faint)

	repo := plan.Config.RepoRoot
	title.Fprintf(w, "[%s]\n", plan.Evaluator.Name())
	row := func(k, v string) {
		key.Fprintf(w, "  %-10s", k+":")
		fmt.Fprintf(w, " %s\n", v)
	}
	row("Route", fmt.Sprintf("%s (id %s)", relToRepo(repo, plan.Paths.RouteFile), plan.Paths.RouteID))
	row("Agent", relToRepo(repo, plan.Paths.AgentFile))
	row("Seed", fmt.Sprintf("%d", plan.Config.Seed))
	row("Ports", fmt.Sprintf("%d / tm %d", plan.Config.Port, plan.Config.TrafficManagerPort))
	row("Command", plan.commandLine())
	row("Workdir", repo)
	row("PID", fmt.Sprintf("%d", os.Getpid()))
	row("Result", plan.Paths.ResultFile)
	row("Stdout", plan.Paths.LogFile)
	row("Stderr", plan.Paths.ErrorFile)
	row("Viz", plan.Paths.VizDir)
}

// statusMark renders the colored verdict used by the status command.
func statusMark(w io.Writer, complete bool) string {
	if complete {
		return newPainter(w, color.FgGreen, color.Bold).Sprint("COMPLETE")
	}
	return newPainter(w, color.FgRed, color.Bold).Sprint("INCOMPLETE")
}
