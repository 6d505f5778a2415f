package chart

import "github.com/okian/tcxview/pkg/logger"

// Option configures a Registry.
type Option func(*Registry)

// WithTheme sets the echarts theme, e.g. "macarons" or "shine".
func WithTheme(theme string) Option {
	return func(r *Registry) {
		if theme != "" {
			r.theme = theme
		}
	}
}

// WithAssetsHost serves echarts assets from host instead of the public CDN.
func WithAssetsHost(host string) Option {
	return func(r *Registry) {
		r.assetsHost = host
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}
