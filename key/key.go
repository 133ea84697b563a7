// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// DefinedFieldsCount represents the total cardinality of the application configuration schema.
const DefinedFieldsCount = 12

// Media Server Connectivity - these keys locate the host media server that declares items and streams.
const (
	ServerURL = "server.url"
)

// Playback Engine - these keys configure the external decode/render engine binding.
const (
	EngineBinary   = "engine.binary"
	EnginePipeline = "engine.pipeline"
)

// Media Playback - these keys maintain the behavior of the playback session.
const (
	PlayerFullscreen   = "player.fullscreen"
	PlayerSavePosition = "player.save_position"
)

// Iconography - these keys manage the visual rendering of CLI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
	CliShowStreams  = "cli.show_streams"
)
