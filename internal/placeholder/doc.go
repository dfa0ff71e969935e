// Package placeholder generates low-quality image placeholders (LQIP).
//
// A placeholder is a tiny, heavily compressed JPEG rendition of a source image,
// encoded as a base64 data URI so it can be inlined into markup and shown
// (usually blurred by CSS) while the full image loads.
//
// # Pipeline
//
// Generation is strictly sequential for a single source:
//
//  1. Resolve the source to bytes (HTTP(S) fetch, data URI, file path or blob)
//  2. Decode the bytes into an image.Image (PNG, JPEG, GIF, WebP, BMP, TIFF)
//  3. Draw the image into a fresh off-screen Surface of exactly Width x Height
//     pixels, scaling the full frame without cropping
//  4. Export the surface as JPEG at the requested quality
//
// The defaults are 20x20 pixels at quality 0.3.
//
// # Caching
//
// SessionCache memoises placeholders by key for the lifetime of the cache
// object. Successful results are stored once and returned verbatim afterwards.
// Failures are never stored, so a later call retries. Concurrent misses for
// the same key share a single generation.
//
// Caches are ordinary values owned by their creator. Nothing in this package
// keeps global state, so tests and independent consumers can each hold their
// own cache.
//
// # Errors
//
// Fetch and decode failures match ErrSourceUnavailable. Failures of the
// rendering surface match ErrRenderSurfaceUnavailable. Batch generation is the
// only operation that downgrades errors: failed sources are omitted from the
// result and reported as BatchFailure entries.
//
// # Thread Safety
//
// Generator, SessionCache, MemoryStore and Service are safe for concurrent use.
package placeholder
