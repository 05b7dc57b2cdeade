package types

import "strings"

// ImageContext selects which profile image derivative to use
type ImageContext string

// Image contexts
const (
	ImageContextWeb ImageContext = "web"
	ImageContextPDF ImageContext = "pdf"
)

// ProfileImageURL returns the best image for the context: the context-specific
// derivative when present, otherwise the main profile image.
func ProfileImageURL(p UserProfile, ctx ImageContext) string {
	if ctx == ImageContextWeb && p.ProfileImageWebURL != "" {
		return p.ProfileImageWebURL
	}
	if ctx == ImageContextPDF && p.ProfileImagePDFURL != "" {
		return p.ProfileImagePDFURL
	}
	return p.ProfileImageURL
}

// IsExternalImageURL reports whether url points off-site
func IsExternalImageURL(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

// FormatImageURLForStorage keeps external URLs as-is and roots local paths at "/"
func FormatImageURLForStorage(url string) string {
	if url == "" || IsExternalImageURL(url) || strings.HasPrefix(url, "/") {
		return url
	}
	return "/" + url
}
