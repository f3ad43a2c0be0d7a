package chunker

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finextract/internal/domain"
	"finextract/internal/pdftest"
)

func TestPageRanges(t *testing.T) {
	tests := []struct {
		name  string
		count int
		size  int
		want  []PageRange
	}{
		{"empty document", 0, 25, nil},
		{"single page", 1, 25, []PageRange{{1, 1}}},
		{"exact multiple", 50, 25, []PageRange{{1, 25}, {26, 50}}},
		{"remainder", 60, 25, []PageRange{{1, 25}, {26, 50}, {51, 60}}},
		{"zero size uses default", 30, 0, []PageRange{{1, 25}, {26, 30}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PageRanges(tt.count, tt.size))
		})
	}
}

func TestPageRange_String(t *testing.T) {
	assert.Equal(t, "3", PageRange{3, 3}.String())
	assert.Equal(t, "1-25", PageRange{1, 25}.String())
}

func buildPages(n int) []byte {
	pages := make([][]pdftest.Text, n)
	for i := range pages {
		pages[i] = []pdftest.Text{{X: 72, Y: 700, S: fmt.Sprintf("page %d", i+1)}}
	}
	return pdftest.Build(pages...)
}

func TestSplitter_SingleChunkKeepsBytes(t *testing.T) {
	data := buildPages(3)
	s := NewSplitter(25)

	chunks, err := s.Split(context.Background(), data)

	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, 1, chunks[0].FirstPage)
	assert.Equal(t, 3, chunks[0].LastPage)
	assert.Equal(t, data, chunks[0].PDFBytes)
}

func TestSplitter_MultipleChunks(t *testing.T) {
	data := buildPages(5)
	s := NewSplitter(2)

	chunks, err := s.Split(context.Background(), data)

	require.NoError(t, err)
	require.Len(t, chunks, 3)
	wantPages := []int{2, 2, 1}
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		n, err := api.PageCount(bytes.NewReader(c.PDFBytes), nil)
		require.NoError(t, err)
		assert.Equal(t, wantPages[i], n)
	}
	assert.Equal(t, 5, chunks[2].FirstPage)
	assert.Equal(t, 5, chunks[2].LastPage)
}

func TestSplitter_PageCount(t *testing.T) {
	n, err := NewSplitter(0).PageCount(context.Background(), buildPages(4))

	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestSplitter_InvalidDocument(t *testing.T) {
	_, err := NewSplitter(25).Split(context.Background(), []byte("not a pdf"))

	assert.ErrorIs(t, err, domain.ErrPDFDecode)
}

func TestSplitter_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSplitter(25).Split(ctx, buildPages(1))

	assert.ErrorIs(t, err, context.Canceled)
}
