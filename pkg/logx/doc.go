// Package logx configures mcnotify's structured logging.
//
// The module uses a small wrapper (logx.Logger) on top of zerolog to keep:
//   - Console output readable (short timestamp + short caller)
//   - File output JSON-structured
//   - Level and outputs swappable at runtime (config hot reload)
package logx
