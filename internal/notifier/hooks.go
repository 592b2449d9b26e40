package notifier

import "github.com/CovenantEyes/winsparkle/internal/appcast"

// Hooks adapts plain callbacks to Notifier. Nil fields are skipped.
type Hooks struct {
	DidFindUpdate    func(a appcast.Appcast, autoInstall bool)
	DidNotFindUpdate func()
	UpdateCancelled  func()
	Error            func(err error)
	Progress         func(downloaded, total uint64)
}

func (h Hooks) NotifyDownloadProgress(downloaded, total uint64) {
	if h.Progress != nil {
		h.Progress(downloaded, total)
	}
}

func (h Hooks) NotifyUpdateAvailable(a appcast.Appcast, autoInstall bool) {
	if h.DidFindUpdate != nil {
		h.DidFindUpdate(a, autoInstall)
	}
}

func (h Hooks) NotifyNoUpdates(bool) {
	if h.DidNotFindUpdate != nil {
		h.DidNotFindUpdate()
	}
}

func (h Hooks) NotifyUpdateError(err error) {
	if h.Error != nil {
		h.Error(err)
	}
}

func (h Hooks) NotifyUpdateCancelled() {
	if h.UpdateCancelled != nil {
		h.UpdateCancelled()
	}
}
