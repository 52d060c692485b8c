package monitor

import (
	"testing"

	"github.com/rileyhilliard/gpudash/internal/dashboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderHostList_Loading(t *testing.T) {
	tm := newTestModel(t, Options{}, "gpu1")

	assert.Contains(t, tm.m.renderHostList(), "Loading hosts")
}

func TestRenderHostList_Empty(t *testing.T) {
	tm := newTestModel(t, Options{}).start()

	assert.Contains(t, tm.m.renderHostList(), "No hosts in SSH config")
}

func TestRenderHostList_SelectedHostShowsPhase(t *testing.T) {
	tm := newTestModel(t, Options{}, "gpu1", "gpu2").start()
	tm.press("down", "enter")

	list := tm.m.renderHostList()
	assert.Contains(t, list, "gpu2 "+StatusOK)
	assert.NotContains(t, list, "gpu1 "+StatusOK)
}

func TestFilterEditor(t *testing.T) {
	tm := newTestModel(t, Options{}, "gpu1", "gpu2").start()

	tm.press("f")
	require.Equal(t, ModeFilter, tm.m.Mode())
	view := tm.view()
	assert.Contains(t, view, "Visible hosts")
	assert.Contains(t, view, "2 of 2")

	tm.press("space")
	assert.Contains(t, tm.view(), "1 of 2")

	tm.press("enter")
	assert.Equal(t, ModeBrowse, tm.m.Mode())
	assert.Equal(t, []string{"gpu2"}, tm.state().VisibleHosts())
	assert.True(t, tm.state().ManualFilter())
	assert.Contains(t, tm.view(), "1 shown (filtered)")

	tm.press("f", "a")
	assert.Equal(t, []string{"gpu1", "gpu2"}, tm.state().VisibleHosts())
	assert.False(t, tm.state().ManualFilter())
}

func TestFilterEditor_CancelLeavesFilter(t *testing.T) {
	tm := newTestModel(t, Options{}, "gpu1", "gpu2").start()

	tm.press("f", "j", "space", "esc")

	assert.Equal(t, ModeBrowse, tm.m.Mode())
	assert.Equal(t, []string{"gpu1", "gpu2"}, tm.state().VisibleHosts())
	assert.False(t, tm.state().ManualFilter())
}

func TestFilterEditor_HideAll(t *testing.T) {
	tm := newTestModel(t, Options{}, "gpu1").start()

	tm.press("f", "space", "enter")

	assert.Empty(t, tm.state().VisibleHosts())
	assert.Contains(t, tm.m.renderHostList(), "All hosts hidden")
}

func TestRenderTransfers(t *testing.T) {
	tm := newTestModel(t, Options{}, "gpu1").start()
	assert.Empty(t, tm.m.renderTransfers())

	eng := tm.m.Transfers()
	s, err := eng.StartDownload(dashboard.DownloadInput{Host: "gpu1", RemotePath: "/srv/a.bin", Dir: "/tmp/dl"})
	require.NoError(t, err)
	eng.Progress(dashboard.Download, s.ID, 2048, 4096)

	line := tm.m.renderTransfers()
	assert.Contains(t, line, "download")
	assert.Contains(t, line, "gpu1:/srv/a.bin")
	assert.Contains(t, line, "2.0 KB / 4.0 KB")

	eng.Fail(dashboard.Download, s.ID, "disk full")
	assert.Contains(t, tm.m.renderTransfers(), "disk full")
}

func TestRenderFooterFollowsMode(t *testing.T) {
	tm := newTestModel(t, Options{}, "gpu1").start()
	assert.Contains(t, tm.m.renderFooter(), "? help")

	tm.press("f")
	assert.Contains(t, tm.m.renderFooter(), "space toggle")
}

func TestRenderDetail_NoData(t *testing.T) {
	tm := newTestModel(t, Options{}, "gpu1").start()
	assert.Contains(t, tm.m.renderDetail(), "Select a host to see its GPUs")

	tm.press("enter")
	// The default fake report has no GPUs.
	assert.Contains(t, tm.m.renderDetail(), "No GPUs reported")
}

func TestDetailSize(t *testing.T) {
	tm := newTestModel(t, Options{}, "gpu1")
	w, h := tm.m.detailSize()
	assert.Equal(t, 60, w)
	assert.Equal(t, 20, h)

	tm.send(teaWindow(120, 50))
	w, h = tm.m.detailSize()
	assert.Equal(t, 120-hostPaneWidth-4, w)
	assert.Equal(t, 50-chromeHeight, h)

	tm.send(teaWindow(40, 5))
	w, h = tm.m.detailSize()
	assert.Equal(t, 20, w)
	assert.Equal(t, minBodyHeight, h)
}
