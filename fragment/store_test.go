package fragment

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/slopescan/logging"
)

func TestStoreUpsertRemove(t *testing.T) {
	s := NewStore(logging.NewTestLogger(t))
	var changes []Change
	unlisten := s.AddListener(func(c Change) { changes = append(changes, c) })

	a, b := ID{Hi: 1, Lo: 1}, ID{Hi: 2, Lo: 2}
	test.That(t, s.Upsert(a, makeQuad(InvalidID)), test.ShouldBeNil)
	test.That(t, s.Upsert(b, makeQuad(InvalidID)), test.ShouldBeNil)
	test.That(t, s.Len(), test.ShouldEqual, 2)

	got, ok := s.Get(a)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, got.ID, test.ShouldResemble, a)

	// a replacement keeps the original insertion position
	replacement := makeQuad(a)
	replacement.Classifications = nil
	test.That(t, s.Upsert(a, replacement), test.ShouldBeNil)
	snap := s.Snapshot()
	test.That(t, snap, test.ShouldHaveLength, 2)
	test.That(t, snap[0], test.ShouldEqual, replacement)
	test.That(t, s.AllIDs(), test.ShouldResemble, map[ID]struct{}{a: {}, b: {}})

	test.That(t, s.Remove(a), test.ShouldBeTrue)
	test.That(t, s.Remove(a), test.ShouldBeFalse)
	_, ok = s.Get(a)
	test.That(t, ok, test.ShouldBeFalse)

	test.That(t, changes, test.ShouldHaveLength, 4)
	test.That(t, changes[2].Kind, test.ShouldEqual, Upserted)
	test.That(t, changes[3], test.ShouldResemble, Change{Kind: Removed, ID: a})

	unlisten()
	s.Clear()
	test.That(t, s.Len(), test.ShouldEqual, 0)
	test.That(t, changes, test.ShouldHaveLength, 4)
}

func TestStoreRejectsInvalid(t *testing.T) {
	s := NewStore(logging.NewTestLogger(t))
	bad := makeQuad(InvalidID)
	bad.Triangles = []int{0, 1}
	err := s.Upsert(ID{Hi: 9}, bad)
	test.That(t, errors.Is(err, ErrInvalidFragment), test.ShouldBeTrue)
	test.That(t, errors.Is(s.Upsert(InvalidID, makeQuad(InvalidID)), ErrInvalidFragment), test.ShouldBeTrue)
	test.That(t, errors.Is(s.Upsert(ID{Hi: 9}, nil), ErrInvalidFragment), test.ShouldBeTrue)
	test.That(t, s.Len(), test.ShouldEqual, 0)
}

func TestStoreApplyOrder(t *testing.T) {
	s := NewStore(logging.NewTestLogger(t))
	id := ID{Hi: 3, Lo: 4}

	// the same id added, updated, and removed in one batch ends up absent
	err := s.Apply(MeshesChanged{
		Added:   []*MeshFragment{makeQuad(id)},
		Updated: []*MeshFragment{makeQuad(id)},
		Removed: []ID{id},
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.Len(), test.ShouldEqual, 0)

	// later batches win
	first, second := makeQuad(id), makeQuad(id)
	test.That(t, s.Apply(MeshesChanged{Added: []*MeshFragment{first}}), test.ShouldBeNil)
	test.That(t, s.Apply(MeshesChanged{Updated: []*MeshFragment{second}}), test.ShouldBeNil)
	got, _ := s.Get(id)
	test.That(t, got, test.ShouldEqual, second)

	// one bad fragment does not block the rest
	bad := makeQuad(ID{Hi: 5})
	bad.Normals = bad.Normals[:1]
	err = s.Apply(MeshesChanged{Added: []*MeshFragment{bad, makeQuad(ID{Hi: 6})}})
	test.That(t, errors.Is(err, ErrInvalidFragment), test.ShouldBeTrue)
	test.That(t, s.Len(), test.ShouldEqual, 2)
}

func TestStoreAttachFeed(t *testing.T) {
	feed := NewFeed()
	s := NewStore(logging.NewTestLogger(t))
	detach := s.Attach(feed)

	feed.Publish(MeshesChanged{Added: []*MeshFragment{makeQuad(ID{Hi: 1})}})
	test.That(t, s.Len(), test.ShouldEqual, 1)

	detach()
	feed.Publish(MeshesChanged{Added: []*MeshFragment{makeQuad(ID{Hi: 2})}})
	test.That(t, s.Len(), test.ShouldEqual, 1)

	test.That(t, feed.AcquisitionEnabled(), test.ShouldBeFalse)
	feed.SetAcquisitionEnabled(true)
	test.That(t, feed.AcquisitionEnabled(), test.ShouldBeTrue)
	test.That(t, MeshesChanged{}.Empty(), test.ShouldBeTrue)
}
