// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Nagare is the canonical application identifier used for filesystem paths and CLI branding.
	Nagare = "nagare"

	// Version is the current application semantic version string.
	Version = "0.1.0"

	// UserAgent is the HTTP User-Agent string sent with requests to the media server.
	UserAgent = Nagare + "/" + Version
)

// AsciiArtLogo is the CLI banner shown on the root help screen.
const AsciiArtLogo = `
  ███╗   ██╗ █████╗  ██████╗  █████╗ ██████╗ ███████╗
  ████╗  ██║██╔══██╗██╔════╝ ██╔══██╗██╔══██╗██╔════╝
  ██╔██╗ ██║███████║██║  ███╗███████║██████╔╝█████╗
  ██║╚██╗██║██╔══██║██║   ██║██╔══██║██╔══██╗██╔══╝
  ██║ ╚████║██║  ██║╚██████╔╝██║  ██║██║  ██║███████╗
  ╚═╝  ╚═══╝╚═╝  ╚═╝ ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚══════╝`

// Build metadata, overridable at link time via -ldflags.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
