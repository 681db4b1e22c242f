// Package assets provides the stylesheets that can be prepended to converted
// documents.
//
// # Loader Architecture
//
//	StyleLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in styles compiled into the binary
//	    ├── FilesystemLoader  - {basePath}/styles/{name}.css on disk
//	    └── Resolver          - custom directory first, embedded fallback
//
// Style names are bare identifiers ("github"), never paths; arbitrary CSS
// files are handled by the session's CSS path instead.
package assets
