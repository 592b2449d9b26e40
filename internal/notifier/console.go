package notifier

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"

	"github.com/CovenantEyes/winsparkle/internal/appcast"
	"github.com/CovenantEyes/winsparkle/internal/errs"
	"github.com/CovenantEyes/winsparkle/internal/logger"
	"github.com/CovenantEyes/winsparkle/internal/printer"
	"github.com/CovenantEyes/winsparkle/internal/utils"
)

const (
	borderColor = "\033[38;5;39m"
	resetColor  = "\033[0m"
	padding     = 2
)

// Console prints results to a terminal. On a TTY download progress is a
// spinner; otherwise it goes to the debug log.
type Console struct {
	out            io.Writer
	currentVersion string
	interactive    bool
	p              *printer.ColorPrinter

	mu   sync.Mutex
	spin *spinner.Spinner
}

// NewConsole writes to w. currentVersion is shown next to the offered one.
func NewConsole(w io.Writer, currentVersion string) *Console {
	tty := isTerminal(w)
	return &Console{
		out:            w,
		currentVersion: currentVersion,
		interactive:    tty,
		p:              printer.NewColorPrinter(tty),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (c *Console) NotifyDownloadProgress(downloaded, total uint64) {
	if !c.interactive {
		logger.Debug("Downloaded %s of %s", utils.HumanSize(downloaded), sizeOrUnknown(total))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.spin == nil {
		c.spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(c.out))
		c.spin.Start()
	}
	c.spin.Lock()
	c.spin.Suffix = fmt.Sprintf(" Downloading update %s / %s", utils.HumanSize(downloaded), sizeOrUnknown(total))
	c.spin.Unlock()

	if total > 0 && downloaded == total {
		c.stopLocked()
	}
}

func (c *Console) NotifyUpdateAvailable(a appcast.Appcast, autoInstall bool) {
	c.stop()

	title := "New Version Available!"
	if a.Title != "" {
		title = a.Title
	}
	lines := []string{
		c.p.Success("%s", title),
		fmt.Sprintf("%s %s -> %s", c.p.Info("New version detected:"), c.p.Error("%s", c.currentVersion), c.p.Success("%s", a.DisplayVersion())),
	}
	switch {
	case autoInstall:
		lines = append(lines, c.p.Warning("It will be installed automatically."))
	case a.DownloadURL != "":
		lines = append(lines, fmt.Sprintf("%s%s", c.p.Warning("Download: "), c.p.Accent("%s", a.DownloadURL)))
	case a.WebBrowserURL != "":
		lines = append(lines, fmt.Sprintf("%s%s", c.p.Warning("Get it at: "), c.p.Accent("%s", a.WebBrowserURL)))
	}
	if a.ReleaseNotesURL != "" {
		lines = append(lines, fmt.Sprintf("%s%s", c.p.Info("Release notes: "), a.ReleaseNotesURL))
	}
	c.displayBox(lines)
}

func (c *Console) NotifyNoUpdates(bool) {
	c.stop()
	_, _ = fmt.Fprintf(c.out, "%s\n", c.p.Success("✅ You're up to date (%s)", c.currentVersion))
}

func (c *Console) NotifyUpdateError(err error) {
	c.stop()
	msg := errs.Msg(errs.CodeOf(err))
	if errs.CodeOf(err) == "" {
		msg = "The update check failed"
	}
	_, _ = fmt.Fprintf(c.out, "%s\n", c.p.Error("❌ %s", firstLine(msg)))
	logger.Debug("update error: %v", err)
}

func (c *Console) NotifyUpdateCancelled() {
	c.stop()
	_, _ = fmt.Fprintf(c.out, "%s\n", c.p.Warning("Update check cancelled"))
}

func (c *Console) stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Console) stopLocked() {
	if c.spin != nil {
		c.spin.Stop()
		c.spin = nil
	}
}

func (c *Console) displayBox(lines []string) {
	maxWidth := utils.GetMaxWidth(lines) + padding*2
	border, reset := borderColor, resetColor
	if !c.interactive {
		border, reset = "", ""
	}
	sideBorder := border + "│" + reset

	var b strings.Builder
	b.WriteString(border + "╭" + strings.Repeat("─", maxWidth) + "╮" + reset + "\n")
	for _, line := range lines {
		width := len([]rune(utils.StripANSI(line)))
		paddingLeft := (maxWidth - width) / 2
		paddingRight := maxWidth - width - paddingLeft
		fmt.Fprintf(&b, "%s%s%s%s%s\n", sideBorder, strings.Repeat(" ", paddingLeft), line, strings.Repeat(" ", paddingRight), sideBorder)
	}
	b.WriteString(border + "╰" + strings.Repeat("─", maxWidth) + "╯" + reset + "\n")
	_, _ = io.WriteString(c.out, b.String())
}

func sizeOrUnknown(total uint64) string {
	if total == 0 {
		return "?"
	}
	return utils.HumanSize(total)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
