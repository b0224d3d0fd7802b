// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - File writing, including atomic replacement for the metadata cache
//   - Directory creation
//   - Image resizing, JPEG conversion and ASCII rendering of thumbnails
//
// # File Operations
//
//	// Write data to file
//	err := ioutils.WriteFile(ctx, "/downloads/gorlock.m3u", []byte("#EXTM3U\n"))
//
//	// Replace a file without exposing partial writes
//	err := ioutils.WriteFileAtomic(ctx, cachePath, data)
//
//	// Ensure directory exists
//	err := ioutils.EnsureDir("/path/to/new/directory")
//
// # Image Processing
//
// The ImageService handles thumbnails. JPEG, PNG, GIF and WebP inputs are
// decoded:
//
//	svc := ioutils.NewImageService()
//
//	// Resize image to fit within 500x500
//	resized, _ := svc.ResizeImage(ctx, imageData, 500, 500)
//
//	// Convert to JPEG
//	jpeg, _ := svc.ConvertToJPEG(ctx, webpData)
//
//	// Render as ASCII art, 40 columns by 12 lines at most
//	art, _ := svc.ASCII(ctx, imageData, 40, 12)
package ioutils
