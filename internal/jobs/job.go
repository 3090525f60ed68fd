package jobs

import (
	"github.com/l1jgo/ecsjobs/internal/core/ecs"
	"github.com/l1jgo/ecsjobs/internal/jobs/native"
)

// A job is a plain struct handled by pointer. The dispatcher creates a zero
// value every tick, calls Init once with the entity view and one column view
// per declared component type, then calls Execute for every i in
// [0, entities.Len()) from several goroutines at once.
//
// Execute(i) must look up e := entities.At(i) and touch only slot e of each
// column. Entities are distinct within a dispatch, so no two concurrent calls
// share memory. Each scheduled chunk runs on its own copy of the job.

type Job1[T1 any] interface {
	Init(entities native.Array[ecs.Entity], c1 native.Column[T1])
	Execute(i int)
}

type Job2[T1, T2 any] interface {
	Init(entities native.Array[ecs.Entity], c1 native.Column[T1], c2 native.Column[T2])
	Execute(i int)
}

type Job3[T1, T2, T3 any] interface {
	Init(entities native.Array[ecs.Entity], c1 native.Column[T1], c2 native.Column[T2], c3 native.Column[T3])
	Execute(i int)
}

type Job4[T1, T2, T3, T4 any] interface {
	Init(entities native.Array[ecs.Entity], c1 native.Column[T1], c2 native.Column[T2], c3 native.Column[T3], c4 native.Column[T4])
	Execute(i int)
}
