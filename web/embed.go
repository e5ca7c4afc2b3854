// Package web embeds the overlay document served at "/".
package web

import (
	"embed"
	"io/fs"
)

//go:embed static/*
var embedded embed.FS

// Static returns the overlay assets rooted at the static directory.
func Static() fs.FS {
	sub, err := fs.Sub(embedded, "static")
	if err != nil {
		// The embed pattern guarantees the directory exists.
		panic(err)
	}
	return sub
}
