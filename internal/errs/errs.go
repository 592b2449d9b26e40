package errs

import (
	"errors"
	"fmt"
)

type Code string

const (
	ConfigurationError  Code = "CONFIGURATION_ERROR"
	InsecureTransport   Code = "INSECURE_TRANSPORT"
	ParseError          Code = "PARSE_ERROR"
	DownloadFailure     Code = "DOWNLOAD_FAILURE"
	VerificationFailure Code = "VERIFICATION_FAILURE"
	Cancelled           Code = "CANCELLED"
	AlreadyBound        Code = "ALREADY_BOUND"
	NotBound            Code = "NOT_BOUND"
	CannotWrite         Code = "CANNOT_WRITE"
	WriteFailure        Code = "WRITE_FAILURE"
	InstallerLaunch     Code = "INSTALLER_LAUNCH"
	AlternateFeed       Code = "ALTERNATE_FEED"

	// command line usage
	SkipVersionOrClear Code = "SKIP_VERSION_OR_CLEAR"
	AutocheckOnOff     Code = "AUTOCHECK_ON_OFF"
)

var messages = map[Code]string{
	ConfigurationError: `Update feed is not configured

Set one of:
  - feed_url in config.json
  - WINSPARKLE_FEED_URL in the environment`,

	InsecureTransport: `Refusing to use a non-HTTPS URL

Only https:// feeds, release notes and downloads are accepted.`,

	ParseError: `The update feed could not be parsed`,

	DownloadFailure: `The update could not be downloaded`,

	VerificationFailure: `The downloaded update failed signature verification

The installer was not launched. Check public_key / public_key_file, or
set allow_unsigned_updates=true to accept unsigned feeds (not recommended).`,

	Cancelled:       `The update check was cancelled`,
	AlreadyBound:    `Download destination already set`,
	NotBound:        `Download destination not set before data arrived`,
	CannotWrite:     `Cannot create the download destination`,
	WriteFailure:    `Failed writing update data to disk`,
	InstallerLaunch: `The installer could not be started`,
	AlternateFeed:   `The alternate update source failed`,

	SkipVersionOrClear: `Invalid usage: provide exactly one of a version or --clear

Usage:
  - Stop offering one release in periodic checks:
      winsparkle skip 2.1.0
  - Offer every release again:
      winsparkle skip --clear`,

	AutocheckOnOff: `Invalid argument %q: expected "on" or "off"

Usage:
  winsparkle autocheck on --interval 12h
  winsparkle autocheck off`,
}

// Msg renders the user-facing text for code.
func Msg(code Code, a ...any) string {
	msg := messages[code]
	if msg == "" {
		msg = string(code)
	}
	if len(a) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, a...)
}

// Error carries a Code through the wrap chain. Two *Error values match under
// errors.Is when their codes are equal, so the exported sentinels below can be
// used as targets.
type Error struct {
	Code Code
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, codeText(e.Code), e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, codeText(e.Code))
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", codeText(e.Code), e.Err)
	default:
		return codeText(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// New builds a coded error. err may be nil.
func New(code Code, op string, err error) error {
	return &Error{Code: code, Op: op, Err: err}
}

// Newf builds a coded error with a formatted cause.
func Newf(code Code, op, format string, a ...any) error {
	return &Error{Code: code, Op: op, Err: fmt.Errorf(format, a...)}
}

// CodeOf returns the outermost code in err's chain, or "" when none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Has reports whether any error in err's chain carries code.
func Has(err error, code Code) bool {
	return errors.Is(err, &Error{Code: code})
}

var (
	ErrConfiguration = &Error{Code: ConfigurationError}
	ErrInsecure      = &Error{Code: InsecureTransport}
	ErrParse         = &Error{Code: ParseError}
	ErrDownload      = &Error{Code: DownloadFailure}
	ErrVerification  = &Error{Code: VerificationFailure}
	ErrCancelled     = &Error{Code: Cancelled}
	ErrAlreadyBound  = &Error{Code: AlreadyBound}
	ErrNotBound      = &Error{Code: NotBound}
	ErrCannotWrite   = &Error{Code: CannotWrite}
	ErrWriteFailure  = &Error{Code: WriteFailure}
	ErrInstaller     = &Error{Code: InstallerLaunch}
	ErrAlternateFeed = &Error{Code: AlternateFeed}
)

func codeText(c Code) string {
	switch c {
	case ConfigurationError:
		return "configuration error"
	case InsecureTransport:
		return "insecure transport"
	case ParseError:
		return "parse error"
	case DownloadFailure:
		return "download failure"
	case VerificationFailure:
		return "verification failure"
	case Cancelled:
		return "cancelled"
	case AlreadyBound:
		return "destination already bound"
	case NotBound:
		return "destination not bound"
	case CannotWrite:
		return "cannot write destination"
	case WriteFailure:
		return "write failure"
	case InstallerLaunch:
		return "installer launch failed"
	case AlternateFeed:
		return "alternate feed failed"
	default:
		return string(c)
	}
}
