package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"track-planner/internal/catalog"
	"track-planner/internal/config"
	"track-planner/internal/match"
	"track-planner/internal/piece"
	"track-planner/internal/snap"
	"track-planner/pkg/geometry"
)

var lib = func() *catalog.Library {
	l, err := catalog.NewStandardLibrary(catalog.DefaultDimensions())
	if err != nil {
		panic(err)
	}
	return l
}()

func at(x, y, rotation float64) snap.Pose {
	return snap.Pose{Position: geometry.NewVec2(x, y), Rotation: rotation}
}

// run places n short straights end to end going down the plane.
func run(t *testing.T, l *Layout, n int) []*piece.Placed {
	t.Helper()
	def := lib.MustGet(catalog.ShortStraight)
	first, _ := l.Place(def, at(0, 0, 0))
	out := []*piece.Placed{first}
	for i := 1; i < n; i++ {
		p, _, err := l.PlaceSnapped(def, "A", out[i-1].ID, "B", 0)
		require.NoError(t, err)
		out = append(out, p)
	}
	return out
}

func TestPlaceSnapped(t *testing.T) {
	l := New(config.Default())
	def := lib.MustGet(catalog.ShortStraight)
	a, found := l.Place(def, at(0, 0, 0))
	assert.Empty(t, found)

	b, found, err := l.PlaceSnapped(def, "A", a.ID, "B", 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.InDelta(t, 0, b.Position.X, 1e-9)
	assert.InDelta(t, 54, b.Position.Y, 1e-9)
	assert.Equal(t, 0.0, b.Rotation)

	ref, ok := a.ConnectedTo("B")
	require.True(t, ok)
	assert.Equal(t, piece.Ref{PieceID: b.ID, PortID: "A"}, ref)
	ref, ok = b.ConnectedTo("A")
	require.True(t, ok)
	assert.Equal(t, piece.Ref{PieceID: a.ID, PortID: "B"}, ref)
	assert.True(t, b.IsOpen("B"))

	t.Run("unknown target", func(t *testing.T) {
		_, _, err := l.PlaceSnapped(def, "A", "nope", "B", 0)
		assert.ErrorIs(t, err, ErrPieceNotFound)
	})

	t.Run("unknown port", func(t *testing.T) {
		_, _, err := l.PlaceSnapped(def, "Z", a.ID, "B", 0)
		assert.ErrorIs(t, err, snap.ErrPortNotFound)
		assert.Equal(t, 2, l.Len())
	})
}

func TestLoopClosesItself(t *testing.T) {
	l := New(config.Default())
	def := lib.MustGet(catalog.Curve45)

	first, _ := l.Place(def, at(0, 0, 0))
	prev := first
	var found int
	for i := 1; i < 8; i++ {
		p, matches, err := l.PlaceSnapped(def, "A", prev.ID, "B", 0)
		require.NoError(t, err)
		found = len(matches)
		prev = p
	}

	// The last curve meets both its predecessor and the first curve.
	assert.Equal(t, 2, found)
	for _, p := range l.Pieces() {
		assert.Equal(t, 2, p.ConnectionCount(), p.ID)
	}
	ref, ok := first.ConnectedTo("A")
	require.True(t, ok)
	assert.Equal(t, piece.Ref{PieceID: prev.ID, PortID: "B"}, ref)
	assert.Empty(t, piece.Dangling(l.Pieces()))

	net := l.Network()
	assert.True(t, net.HasLoop())
	assert.Equal(t, 8, net.Links())
}

func TestRemove(t *testing.T) {
	l := New(config.Default())
	ps := run(t, l, 3)

	var removed []string
	l.On(EventPieceRemoved, func(data interface{}) { removed = append(removed, data.(string)) })

	require.NoError(t, l.Remove(ps[1].ID))
	assert.Equal(t, 2, l.Len())
	assert.True(t, ps[0].IsOpen("B"))
	assert.True(t, ps[2].IsOpen("A"))
	assert.Empty(t, piece.Dangling(l.Pieces()))
	assert.Equal(t, []string{ps[1].ID}, removed)

	_, ok := l.Get(ps[1].ID)
	assert.False(t, ok)

	err := l.Remove(ps[1].ID)
	assert.ErrorIs(t, err, ErrPieceNotFound)
}

func TestRemoveClearsOneSidedReference(t *testing.T) {
	l := New(config.Default())
	def := lib.MustGet(catalog.ShortStraight)
	a := piece.NewPlaced("a", def, geometry.Vec2{}, 0)
	b := piece.NewPlaced("b", def, geometry.NewVec2(0, 54), 0)
	c := piece.NewPlaced("c", def, geometry.NewVec2(100, 0), 0)
	piece.Connect(a, "B", b, "A")
	// c claims a link to b that b does not mirror.
	piece.Connect(c, "A", b, "B")
	piece.DisconnectPort(b, "B", nil)
	for _, p := range []*piece.Placed{a, b, c} {
		require.NoError(t, l.Add(p))
	}

	require.NoError(t, l.Remove("b"))
	assert.True(t, a.IsOpen("B"))
	assert.True(t, c.IsOpen("A"))
}

func TestAdd(t *testing.T) {
	l := New(config.Default())
	def := lib.MustGet(catalog.ShortStraight)
	require.NoError(t, l.Add(piece.NewPlaced("x", def, geometry.Vec2{}, 0)))
	err := l.Add(piece.NewPlaced("x", def, geometry.Vec2{}, 0))
	assert.ErrorIs(t, err, ErrDuplicatePiece)

	// Generated ids skip ids already taken.
	id := l.NewID(def)
	assert.Equal(t, catalog.ShortStraight+"-1", id)
	require.NoError(t, l.Add(piece.NewPlaced(catalog.ShortStraight+"-2", def, geometry.Vec2{}, 0)))
	assert.Equal(t, catalog.ShortStraight+"-3", l.NewID(def))
}

func TestUpdateAndScan(t *testing.T) {
	l := New(config.Default())
	def := lib.MustGet(catalog.ShortStraight)
	a, _ := l.Place(def, at(0, 0, 0))
	b, found := l.Place(def, at(200, 0, 0))
	assert.Empty(t, found)

	require.NoError(t, l.Update(b.ID, at(0, 54, 0)))
	assert.True(t, a.IsOpen("B"), "update does not connect")

	matches, err := l.ScanAndConnect(b.ID)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.False(t, a.IsOpen("B"))

	assert.ErrorIs(t, l.Update("nope", at(0, 0, 0)), ErrPieceNotFound)
	_, err = l.ScanAndConnect("nope")
	assert.ErrorIs(t, err, ErrPieceNotFound)
}

func TestDisconnect(t *testing.T) {
	l := New(config.Default())
	ps := run(t, l, 2)

	var links []Link
	l.On(EventDisconnected, func(data interface{}) { links = append(links, data.(Link)) })

	require.NoError(t, l.Disconnect(ps[1].ID, "A"))
	assert.True(t, ps[0].IsOpen("B"))
	assert.True(t, ps[1].IsOpen("A"))
	require.Len(t, links, 1)
	assert.Equal(t, piece.Ref{PieceID: ps[0].ID, PortID: "B"}, links[0].B)

	// Already open.
	require.NoError(t, l.Disconnect(ps[1].ID, "A"))
	assert.Len(t, links, 1)
	assert.ErrorIs(t, l.Disconnect("nope", "A"), ErrPieceNotFound)
}

func TestFindSnapTarget(t *testing.T) {
	l := New(config.Default())
	def := lib.MustGet(catalog.ShortStraight)
	a, _ := l.Place(def, at(0, 0, 0))

	wp, _ := a.WorldPort("B")
	dragged := matchDragged(wp.Position.Add(geometry.NewVec2(3, 4)), geometry.South)
	target, ok := l.FindSnapTarget(dragged, "")
	require.True(t, ok)
	assert.Equal(t, a.ID, target.PieceID)
	assert.Equal(t, "B", target.Port.ID)
	assert.InDelta(t, 5, target.Distance, 1e-9)

	_, ok = l.FindSnapTarget(dragged, a.ID)
	assert.False(t, ok, "the dragged piece is never its own target")

	far := matchDragged(wp.Position.Add(geometry.NewVec2(0, 11)), geometry.South)
	_, ok = l.FindSnapTarget(far, "")
	assert.False(t, ok)
}

func TestEvents(t *testing.T) {
	l := New(config.Default())
	counts := make(map[EventType]int)
	for _, typ := range []EventType{EventPieceAdded, EventConnected, EventPieceMoved} {
		typ := typ
		l.On(typ, func(interface{}) { counts[typ]++ })
	}

	run(t, l, 3)
	assert.Equal(t, 3, counts[EventPieceAdded])
	assert.Equal(t, 2, counts[EventConnected])
	assert.Equal(t, 0, counts[EventPieceMoved])
	assert.Equal(t, "connected", EventConnected.String())
}

func TestConfigure(t *testing.T) {
	l := New(config.Default())
	def := lib.MustGet(catalog.ShortStraight)
	a, _ := l.Place(def, at(0, 0, 0))

	wp, _ := a.WorldPort("B")
	dragged := matchDragged(wp.Position.Add(geometry.NewVec2(0, 15)), geometry.South)
	_, ok := l.FindSnapTarget(dragged, "")
	assert.False(t, ok)

	l.Configure(config.Default().WithSnapRadius(20))
	assert.Equal(t, 20.0, l.SnapRadius())
	assert.Equal(t, 0.5, l.Tolerance())
	_, ok = l.FindSnapTarget(dragged, "")
	assert.True(t, ok)
}

func TestQueriesSeeDirectChanges(t *testing.T) {
	l := New(config.Default())
	ps := run(t, l, 3)

	// Run one query so any earlier state exists before the direct edits.
	_, _ = l.FindSnapTarget(matchDragged(geometry.Vec2{}, geometry.North), "")

	t.Run("moved piece", func(t *testing.T) {
		ps[0].Position = geometry.NewVec2(500, 0)
		piece.DisconnectPiece(ps[0], l.Pieces())
		dragged := matchDragged(geometry.NewVec2(500, 27), geometry.South)

		want, wantOK := match.FindSnapTarget(dragged, l.Pieces(), "", l.SnapRadius())
		got, gotOK := l.FindSnapTarget(dragged, "")
		require.True(t, wantOK)
		assert.Equal(t, wantOK, gotOK)
		assert.Equal(t, want, got)
	})

	t.Run("disconnected piece", func(t *testing.T) {
		piece.DisconnectPiece(ps[1], l.Pieces())
		wp, _ := ps[2].WorldPort("A")
		dragged := matchDragged(wp.Position, geometry.North)

		want, wantOK := match.FindSnapTarget(dragged, l.Pieces(), ps[1].ID, l.SnapRadius())
		got, gotOK := l.FindSnapTarget(dragged, ps[1].ID)
		require.True(t, wantOK)
		assert.Equal(t, wantOK, gotOK)
		assert.Equal(t, want, got)
	})

	t.Run("scan after direct disconnect", func(t *testing.T) {
		matches, err := l.ScanAndConnect(ps[1].ID)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, ps[2].ID, matches[0].OtherPieceID)
		assert.Empty(t, piece.Dangling(l.Pieces()))
	})
}

func TestBounds(t *testing.T) {
	l := New(config.Default())
	_, ok := l.Bounds()
	assert.False(t, ok)

	run(t, l, 2)
	def := lib.MustGet(catalog.ShortStraight)
	l.Place(def, at(100, 0, 90))

	box, ok := l.Bounds()
	require.True(t, ok)
	assert.InDelta(t, 0, box.X, 1e-9)
	assert.InDelta(t, -27, box.Y, 1e-9)
	assert.InDelta(t, 127, box.Width, 1e-9)
	assert.InDelta(t, 108, box.Height, 1e-9)
}

func TestPlaceSkipsTakenIDs(t *testing.T) {
	l := New(config.Default())
	def := lib.MustGet(catalog.ShortStraight)
	require.NoError(t, l.Add(piece.NewPlaced(catalog.ShortStraight+"-1", def, geometry.NewVec2(300, 0), 0)))

	p, _ := l.Place(def, at(0, 0, 0))
	assert.Equal(t, catalog.ShortStraight+"-2", p.ID)
	assert.Equal(t, 2, l.Len())
}
