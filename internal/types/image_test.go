package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfileImageURL(t *testing.T) {
	p := UserProfile{ProfileImageURL: "/main.jpg"}
	assert.Equal(t, "/main.jpg", ProfileImageURL(p, ImageContextWeb))
	assert.Equal(t, "/main.jpg", ProfileImageURL(p, ImageContextPDF))

	p.ProfileImageWebURL = "/web.jpg"
	p.ProfileImagePDFURL = "/pdf.jpg"
	assert.Equal(t, "/web.jpg", ProfileImageURL(p, ImageContextWeb))
	assert.Equal(t, "/pdf.jpg", ProfileImageURL(p, ImageContextPDF))
}

func TestFormatImageURLForStorage(t *testing.T) {
	assert.Equal(t, "", FormatImageURLForStorage(""))
	assert.Equal(t, "/uploads/a.jpg", FormatImageURLForStorage("uploads/a.jpg"))
	assert.Equal(t, "/uploads/a.jpg", FormatImageURLForStorage("/uploads/a.jpg"))
	assert.Equal(t, "https://cdn.example.com/a.jpg", FormatImageURLForStorage("https://cdn.example.com/a.jpg"))
	assert.True(t, IsExternalImageURL("http://example.com/x.png"))
	assert.False(t, IsExternalImageURL("/x.png"))
}
