package app

import (
	"log"
	"mime"
)

// staticTypes are registered when the host MIME table lacks them.
var staticTypes = map[string]string{
	".css": "text/css; charset=utf-8",
	".png": "image/png",
	".svg": "image/svg+xml",
}

func init() {
	for ext, typ := range staticTypes {
		ensureMimeType(ext, typ)
	}
}

func ensureMimeType(ext, typ string) {
	if mime.TypeByExtension(ext) != "" {
		return
	}
	if err := mime.AddExtensionType(ext, typ); err != nil {
		log.Printf("app: register MIME type for %s: %v", ext, err)
	}
}
