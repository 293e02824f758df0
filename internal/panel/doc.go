// Package panel serves the ground station dashboard page as an embedded asset.
//
// The page, its script and stylesheet are embedded into the binary with
// go:embed, so the dashboard needs no files at runtime. Handler serves them
// with index.html fallback for unknown paths. A directory on disk can be
// supplied instead for editing the page without a rebuild.
package panel
