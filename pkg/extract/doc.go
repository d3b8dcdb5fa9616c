// Package extract pulls downloadable element URLs out of page markup.
//
// The element kinds the CLI exposes (image, audio, video) map onto the
// markup tags img, audio and video; any other kind is treated as a tag
// name directly. Only elements carrying a src attribute are considered,
// and every src is resolved against the page URL before being returned.
package extract
