// Package config provides the configuration system for pepperd.
//
// The config package manages loading, merging, validating, and providing
// access to server-side settings: sections such as editor, ui, vim, lsp,
// paths, logging and plugins (SPEC_FULL §11's settings layer, distinct
// from the command-file sourcing Editor.Source does for --config). It
// holds no syntax definitions or LSP server tables.
//
// # Architecture
//
// Configuration is organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  6. Environment Variables   │  ← Highest priority
//	├─────────────────────────────┤
//	│  5. Plugin Settings         │
//	├─────────────────────────────┤
//	│  4. Project/Workspace       │  ← .pepperd/config.toml
//	├─────────────────────────────┤
//	│  3. User Keymaps            │  ← ~/.config/pepperd/keymaps.toml
//	├─────────────────────────────┤
//	│  2. User Settings           │  ← ~/.config/pepperd/settings.toml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// # Sub-packages
//
//   - loader: Configuration loading (TOML files, environment variables)
//   - layer: Layer management and merging strategies
//   - schema: JSON Schema validation
//   - watcher: File watching for live reload
//   - notify: Change notification and observer pattern
//
// # Basic Usage
//
// Load configuration from default paths:
//
//	cfg := config.New()
//	if err := cfg.Load(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Access typed settings
//	tabSize, _ := cfg.GetInt("editor.tabSize")
//	theme, _ := cfg.GetString("ui.theme")
//
//	// Access typed sections
//	editor := cfg.Editor()
//	fmt.Println(editor.TabSize)
//
// # Type-Safe Access
//
// Config provides type-safe accessors to prevent runtime errors:
//
//	// Using generic accessor
//	tabSize, err := cfg.GetInt("editor.tabSize")
//	if err != nil {
//	    // Handle error (wrong type or unknown setting)
//	}
//
//	// Using typed section
//	editor := cfg.Editor()
//	tabSize := editor.TabSize // Compile-time type safety
//
// # Configuration Files
//
// pepperd uses TOML as the primary configuration format:
//
//	# ~/.config/pepperd/settings.toml
//	[editor]
//	tabSize = 4
//	insertSpaces = true
//	wordWrap = "on"
//
//	[ui]
//	theme = "dark"
//	fontSize = 14
//
// # Error Handling
//
// The package defines several error types:
//
//   - ErrSettingNotFound: Setting path doesn't exist
//   - ErrTypeMismatch: Value type doesn't match expected type
//   - ErrValidationFailed: Value fails schema validation
//   - ParseError (a struct type): Configuration file parsing failed
//   - ErrFileNotFound: Configuration file doesn't exist
package config
