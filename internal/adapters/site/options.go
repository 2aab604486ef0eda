package site

// Option applies a configuration option to the Renderer.
type Option func(*Renderer)

// WithLang sets the site language ("fr" or "en").
func WithLang(lang string) Option {
	return func(r *Renderer) {
		r.lang = lang
	}
}

// WithYear sets the year printed in page footers.
func WithYear(year int) Option {
	return func(r *Renderer) {
		if year > 0 {
			r.year = year
		}
	}
}

// WithQRSize sets the edge length of QR images in pixels.
func WithQRSize(px int) Option {
	return func(r *Renderer) {
		if px > 0 {
			r.qrSize = px
		}
	}
}
