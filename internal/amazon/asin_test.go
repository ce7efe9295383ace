package amazon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractASIN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want string
		ok   bool
	}{
		{"dp path", "https://www.amazon.in/dp/0143333626", "0143333626", true},
		{"dp path with slug", "https://www.amazon.in/India-After-Gandhi/dp/0330505548/ref=sr_1_1", "0330505548", true},
		{"gp product path", "https://www.amazon.com/gp/product/B07YCW2QXR?tag=su-21", "B07YCW2QXR", true},
		{"generic product path", "https://www.amazon.in/product/B01N5M7WPS", "B01N5M7WPS", true},
		{"digital path", "https://www.amazon.in/d/B08XYZABCD", "B08XYZABCD", true},
		{"bare asin path", "https://www.amazon.in/0143421239/", "0143421239", true},
		{"lowercase dp segment rejected", "https://www.amazon.in/dp/b07ycw2qxr", "", false},
		{"nav path not an asin", "https://www.amazon.in/primevideo", "", false},
		{"mixed-case segment rejected", "https://www.amazon.in/Primevideo1/", "", false},
		{"storefront excluded", "https://www.amazon.in/stores/page/ABCDEFGH12", "", false},
		{"author page excluded", "https://www.amazon.in/author/ramachandra", "", false},
		{"search excluded", "https://www.amazon.in/s?k=seeing+like+a+state", "", false},
		{"seller page excluded", "https://www.amazon.in/sp?seller=A1B2C3D4E5F6G", "", false},
		{"browse excluded", "https://www.amazon.in/gp/browse.html?node=976389031", "", false},
		{"nine chars no match", "https://www.amazon.in/dp/B07YCW2QX", "", false},
		{"eleven chars no match", "https://www.amazon.in/dp/B07YCW2QXRZ", "", false},
		{"homepage", "https://www.amazon.in/", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractASIN(tt.url)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsShortLink(t *testing.T) {
	t.Parallel()

	assert.True(t, IsShortLink("https://amzn.in/d/gdhQYgE"))
	assert.True(t, IsShortLink("https://amzn.to/3xYzAbC"))
	assert.True(t, IsShortLink("https://a.co/d/0abcdefg"))
	assert.True(t, IsShortLink("http://amzn.in/bXyZ"))

	assert.False(t, IsShortLink("https://www.amazon.in/dp/0143333626"))
	assert.False(t, IsShortLink("https://www.amazon.com/gp/product/B07YCW2QXR"))
	assert.False(t, IsShortLink("https://example.com/amzn.in/fake"))
}
