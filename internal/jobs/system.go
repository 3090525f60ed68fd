package jobs

import (
	"reflect"
	"time"

	"github.com/l1jgo/ecsjobs/internal/core/ecs"
	"github.com/l1jgo/ecsjobs/internal/jobs/native"
	"github.com/l1jgo/ecsjobs/internal/jobs/sched"
)

// System1 dispatches job J over entities with component T1. Configure, when
// set, runs after Init and before scheduling, on the pipeline goroutine.
type System1[J any, T1 any, PJ interface {
	*J
	Job1[T1]
}] struct {
	dispatcher
	Configure func(job *J, dt time.Duration)
}

func NewSystem1[J any, T1 any, PJ interface {
	*J
	Job1[T1]
}](opts Options) *System1[J, T1, PJ] {
	opts.Name = nameOr[J](opts.Name)
	return &System1[J, T1, PJ]{
		dispatcher: newDispatcher(opts, reflect.TypeFor[T1]()),
	}
}

func (s *System1[J, T1, PJ]) Update(dt time.Duration) error {
	return s.run(func(entities native.Array[ecs.Entity], b []native.Block) (sched.Body, error) {
		c1, err := native.ColumnOf[T1](b[0])
		if err != nil {
			return nil, err
		}
		var job J
		PJ(&job).Init(entities, c1)
		if s.Configure != nil {
			s.Configure(&job, dt)
		}
		return bodyOf(job, func(j *J, i int) { PJ(j).Execute(i) }), nil
	})
}

// System2 dispatches job J over entities with components T1 and T2.
type System2[J any, T1, T2 any, PJ interface {
	*J
	Job2[T1, T2]
}] struct {
	dispatcher
	Configure func(job *J, dt time.Duration)
}

func NewSystem2[J any, T1, T2 any, PJ interface {
	*J
	Job2[T1, T2]
}](opts Options) *System2[J, T1, T2, PJ] {
	opts.Name = nameOr[J](opts.Name)
	return &System2[J, T1, T2, PJ]{
		dispatcher: newDispatcher(opts, reflect.TypeFor[T1](), reflect.TypeFor[T2]()),
	}
}

func (s *System2[J, T1, T2, PJ]) Update(dt time.Duration) error {
	return s.run(func(entities native.Array[ecs.Entity], b []native.Block) (sched.Body, error) {
		c1, err := native.ColumnOf[T1](b[0])
		if err != nil {
			return nil, err
		}
		c2, err := native.ColumnOf[T2](b[1])
		if err != nil {
			return nil, err
		}
		var job J
		PJ(&job).Init(entities, c1, c2)
		if s.Configure != nil {
			s.Configure(&job, dt)
		}
		return bodyOf(job, func(j *J, i int) { PJ(j).Execute(i) }), nil
	})
}

// System3 dispatches job J over entities with components T1, T2 and T3.
type System3[J any, T1, T2, T3 any, PJ interface {
	*J
	Job3[T1, T2, T3]
}] struct {
	dispatcher
	Configure func(job *J, dt time.Duration)
}

func NewSystem3[J any, T1, T2, T3 any, PJ interface {
	*J
	Job3[T1, T2, T3]
}](opts Options) *System3[J, T1, T2, T3, PJ] {
	opts.Name = nameOr[J](opts.Name)
	return &System3[J, T1, T2, T3, PJ]{
		dispatcher: newDispatcher(opts, reflect.TypeFor[T1](), reflect.TypeFor[T2](), reflect.TypeFor[T3]()),
	}
}

func (s *System3[J, T1, T2, T3, PJ]) Update(dt time.Duration) error {
	return s.run(func(entities native.Array[ecs.Entity], b []native.Block) (sched.Body, error) {
		c1, err := native.ColumnOf[T1](b[0])
		if err != nil {
			return nil, err
		}
		c2, err := native.ColumnOf[T2](b[1])
		if err != nil {
			return nil, err
		}
		c3, err := native.ColumnOf[T3](b[2])
		if err != nil {
			return nil, err
		}
		var job J
		PJ(&job).Init(entities, c1, c2, c3)
		if s.Configure != nil {
			s.Configure(&job, dt)
		}
		return bodyOf(job, func(j *J, i int) { PJ(j).Execute(i) }), nil
	})
}

// System4 dispatches job J over entities with components T1 through T4.
type System4[J any, T1, T2, T3, T4 any, PJ interface {
	*J
	Job4[T1, T2, T3, T4]
}] struct {
	dispatcher
	Configure func(job *J, dt time.Duration)
}

func NewSystem4[J any, T1, T2, T3, T4 any, PJ interface {
	*J
	Job4[T1, T2, T3, T4]
}](opts Options) *System4[J, T1, T2, T3, T4, PJ] {
	opts.Name = nameOr[J](opts.Name)
	return &System4[J, T1, T2, T3, T4, PJ]{
		dispatcher: newDispatcher(opts,
			reflect.TypeFor[T1](), reflect.TypeFor[T2](), reflect.TypeFor[T3](), reflect.TypeFor[T4]()),
	}
}

func (s *System4[J, T1, T2, T3, T4, PJ]) Update(dt time.Duration) error {
	return s.run(func(entities native.Array[ecs.Entity], b []native.Block) (sched.Body, error) {
		c1, err := native.ColumnOf[T1](b[0])
		if err != nil {
			return nil, err
		}
		c2, err := native.ColumnOf[T2](b[1])
		if err != nil {
			return nil, err
		}
		c3, err := native.ColumnOf[T3](b[2])
		if err != nil {
			return nil, err
		}
		c4, err := native.ColumnOf[T4](b[3])
		if err != nil {
			return nil, err
		}
		var job J
		PJ(&job).Init(entities, c1, c2, c3, c4)
		if s.Configure != nil {
			s.Configure(&job, dt)
		}
		return bodyOf(job, func(j *J, i int) { PJ(j).Execute(i) }), nil
	})
}
