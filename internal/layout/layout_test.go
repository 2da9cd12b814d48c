package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name          string
		width         int
		height        int
		promptVisible bool
		wantBrowser   int
		wantViewer    int
		wantMain      int
	}{
		{
			name:          "standard layout without prompt",
			width:         100,
			height:        40,
			promptVisible: false,
			wantBrowser:   35,
			wantViewer:    65,
			wantMain:      39, // 40 - 1 (status bar)
		},
		{
			name:          "standard layout with prompt",
			width:         100,
			height:        40,
			promptVisible: true,
			wantBrowser:   35,
			wantViewer:    65,
			wantMain:      36, // 39 - 3 (prompt strip)
		},
		{
			name:          "small terminal",
			width:         60,
			height:        20,
			promptVisible: false,
			wantBrowser:   21,
			wantViewer:    39,
			wantMain:      19,
		},
		{
			name:          "very small terminal respects minimums",
			width:         30,
			height:        8,
			promptVisible: true,
			wantBrowser:   20, // min width
			wantViewer:    20, // min width (will exceed total)
			wantMain:      5,  // min height
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Calculate(tt.width, tt.height, tt.promptVisible, DefaultBrowserPercent)

			assert.Equal(t, tt.width, l.TotalWidth, "TotalWidth")
			assert.Equal(t, tt.height, l.TotalHeight, "TotalHeight")
			assert.Equal(t, tt.wantBrowser, l.BrowserWidth, "BrowserWidth")
			assert.Equal(t, tt.wantMain, l.MainHeight, "MainHeight")
			assert.Equal(t, tt.promptVisible, l.PromptVisible, "PromptVisible")
			assert.Equal(t, StatusBarHeight, l.StatusHeight, "StatusHeight")
		})
	}
}

func TestCalculateClampsBrowserPercent(t *testing.T) {
	narrow := Calculate(200, 40, false, 5)
	assert.Equal(t, 200*MinBrowserPercent/100, narrow.BrowserWidth)

	wide := Calculate(200, 40, false, 90)
	assert.Equal(t, 200*MaxBrowserPercent/100, wide.BrowserWidth)
}

func TestLayoutBounds(t *testing.T) {
	l := Calculate(100, 40, true, DefaultBrowserPercent)

	t.Run("BrowserBounds", func(t *testing.T) {
		x, y, width, height := l.BrowserBounds()
		assert.Equal(t, 0, x)
		assert.Equal(t, 0, y)
		assert.Equal(t, l.BrowserWidth, width)
		assert.Equal(t, l.MainHeight, height)
	})

	t.Run("ViewerBounds", func(t *testing.T) {
		x, y, width, height := l.ViewerBounds()
		assert.Equal(t, l.BrowserWidth, x)
		assert.Equal(t, 0, y)
		assert.Equal(t, l.ViewerWidth, width)
		assert.Equal(t, l.MainHeight, height)
	})

	t.Run("PromptBounds when visible", func(t *testing.T) {
		x, y, width, height := l.PromptBounds()
		assert.Equal(t, 0, x)
		assert.Equal(t, l.MainHeight, y)
		assert.Equal(t, l.TotalWidth, width)
		assert.Equal(t, PromptHeight, height)
	})

	t.Run("PromptBounds when hidden", func(t *testing.T) {
		l2 := Calculate(100, 40, false, DefaultBrowserPercent)
		x, y, width, height := l2.PromptBounds()
		assert.Equal(t, 0, x)
		assert.Equal(t, 0, y)
		assert.Equal(t, 0, width)
		assert.Equal(t, 0, height)
	})

	t.Run("StatusBarBounds sits below prompt", func(t *testing.T) {
		_, y, width, height := l.StatusBarBounds()
		assert.Equal(t, l.MainHeight+PromptHeight, y)
		assert.Equal(t, l.TotalWidth, width)
		assert.Equal(t, StatusBarHeight, height)
	})
}

func TestContentDimensions(t *testing.T) {
	l := Calculate(100, 40, false, DefaultBrowserPercent)

	t.Run("ContentWidth", func(t *testing.T) {
		width := l.ContentWidth(50, 1)
		assert.Equal(t, 48, width) // 50 - 2*1

		width = l.ContentWidth(50, 2)
		assert.Equal(t, 46, width) // 50 - 2*2
	})

	t.Run("ContentHeight", func(t *testing.T) {
		height := l.ContentHeight(30, 1)
		assert.Equal(t, 28, height) // 30 - 2*1
	})

	t.Run("ContentWidth handles zero", func(t *testing.T) {
		width := l.ContentWidth(2, 2)
		assert.Equal(t, 0, width) // max(2-4, 0) = 0
	})
}
