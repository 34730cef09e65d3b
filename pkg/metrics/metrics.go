// Package metrics defines prometheus collectors for the admin page and its save endpoint
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DisplayTextSaves counts save attempts by result: saved, already_set, unauthorized, forbidden, bad_request, error
	DisplayTextSaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viteadmin_display_text_saves_total",
			Help: "Display text save attempts by result",
		},
		[]string{"result"},
	)

	// AdminPageViews counts rendered admin pages
	AdminPageViews = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "viteadmin_admin_page_views_total",
			Help: "Rendered admin page views",
		},
	)
)
