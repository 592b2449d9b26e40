// Package appcast reads Sparkle-style RSS update feeds.
package appcast

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/CovenantEyes/winsparkle/internal/version"
)

// Appcast describes the newest release offered by a feed.
type Appcast struct {
	Version            string
	ShortVersion       string
	Title              string
	Description        string
	DownloadURL        string
	ReleaseNotesURL    string
	WebBrowserURL      string
	Signature          string
	InstallerArguments string
	OS                 string
	SilentInstall      bool
}

// IsValid reports whether the appcast names a version at all.
func (a Appcast) IsValid() bool { return a.Version != "" }

// DisplayVersion prefers the human-readable short version.
func (a Appcast) DisplayVersion() string {
	if a.ShortVersion != "" {
		return a.ShortVersion
	}
	return a.Version
}

type rss struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Items []item `xml:"item"`
	} `xml:"channel"`
}

type item struct {
	Title              string      `xml:"title"`
	Description        string      `xml:"description"`
	Link               string      `xml:"link"`
	ReleaseNotesLink   string      `xml:"http://www.andymatuschak.org/xml-namespaces/sparkle releaseNotesLink"`
	Version            string      `xml:"http://www.andymatuschak.org/xml-namespaces/sparkle version"`
	ShortVersionString string      `xml:"http://www.andymatuschak.org/xml-namespaces/sparkle shortVersionString"`
	Enclosures         []enclosure `xml:"enclosure"`
}

type enclosure struct {
	URL                string `xml:"url,attr"`
	Version            string `xml:"http://www.andymatuschak.org/xml-namespaces/sparkle version,attr"`
	ShortVersionString string `xml:"http://www.andymatuschak.org/xml-namespaces/sparkle shortVersionString,attr"`
	DSASignature       string `xml:"http://www.andymatuschak.org/xml-namespaces/sparkle dsaSignature,attr"`
	EdSignature        string `xml:"http://www.andymatuschak.org/xml-namespaces/sparkle edSignature,attr"`
	OS                 string `xml:"http://www.andymatuschak.org/xml-namespaces/sparkle os,attr"`
	InstallerArguments string `xml:"http://www.andymatuschak.org/xml-namespaces/sparkle installerArguments,attr"`
	Silent             string `xml:"http://www.andymatuschak.org/xml-namespaces/sparkle silent,attr"`
}

// Parse returns the newest release in data applicable to the running OS.
// A well-formed feed without a usable item yields an invalid Appcast and no
// error.
func Parse(data []byte) (Appcast, error) {
	return ParseFor(data, runtime.GOOS)
}

// ParseFor is Parse with an explicit GOOS value.
func ParseFor(data []byte, goos string) (Appcast, error) {
	var doc rss
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true
	if err := dec.Decode(&doc); err != nil {
		return Appcast{}, fmt.Errorf("failed to decode appcast: %w", err)
	}

	var best Appcast
	for _, it := range doc.Channel.Items {
		for _, c := range candidates(it) {
			if !osMatches(c.OS, goos) {
				continue
			}
			if !best.IsValid() || version.Compare(c.Version, best.Version) > 0 {
				best = c
			}
		}
	}
	return best, nil
}

func candidates(it item) []Appcast {
	base := Appcast{
		Title:           strings.TrimSpace(it.Title),
		Description:     strings.TrimSpace(it.Description),
		ReleaseNotesURL: strings.TrimSpace(it.ReleaseNotesLink),
		Version:         strings.TrimSpace(it.Version),
		ShortVersion:    strings.TrimSpace(it.ShortVersionString),
	}

	// items without a download only point the user at a web page
	if len(it.Enclosures) == 0 {
		base.WebBrowserURL = strings.TrimSpace(it.Link)
		return []Appcast{base}
	}

	out := make([]Appcast, 0, len(it.Enclosures))
	for _, e := range it.Enclosures {
		a := base
		a.DownloadURL = strings.TrimSpace(e.URL)
		a.OS = strings.TrimSpace(e.OS)
		a.InstallerArguments = strings.TrimSpace(e.InstallerArguments)
		a.SilentInstall = parseBool(e.Silent)
		if v := strings.TrimSpace(e.Version); v != "" {
			a.Version = v
		}
		if v := strings.TrimSpace(e.ShortVersionString); v != "" {
			a.ShortVersion = v
		}
		a.Signature = strings.TrimSpace(e.DSASignature)
		if a.Signature == "" {
			a.Signature = strings.TrimSpace(e.EdSignature)
		}
		out = append(out, a)
	}
	return out
}

// osMatches accepts "windows", "windows-x64", "macos" and plain GOOS names.
// An empty value applies everywhere.
func osMatches(os, goos string) bool {
	if os == "" {
		return true
	}
	name, arch, _ := strings.Cut(strings.ToLower(os), "-")
	if name == "macos" {
		name = "darwin"
	}
	if name != goos {
		return false
	}
	switch arch {
	case "":
		return true
	case "x64", "amd64":
		return runtime.GOARCH == "amd64"
	case "arm64":
		return runtime.GOARCH == "arm64"
	case "x86", "386":
		return runtime.GOARCH == "386"
	default:
		return false
	}
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}
