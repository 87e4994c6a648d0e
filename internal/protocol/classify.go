package protocol

import "strings"

var (
	imageExtensions = map[string]struct{}{"png": {}, "jpg": {}, "jpeg": {}, "gif": {}, "webp": {}, "bmp": {}}
	audioExtensions = map[string]struct{}{"wav": {}, "mp3": {}, "m4a": {}, "ogg": {}, "flac": {}}
)

// ClassifyUpload picks the Output variant for an uploaded file from its
// extension. Unknown or missing extensions are plain uploads.
func ClassifyUpload(u Upload) OutputKind {
	ext := strings.ToLower(strings.TrimPrefix(deref(u.Extension), "."))
	if _, ok := imageExtensions[ext]; ok {
		return OutputImage
	}
	if _, ok := audioExtensions[ext]; ok {
		return OutputAudio
	}
	return OutputUpload
}
