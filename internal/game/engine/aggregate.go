package engine

import (
	"fmt"

	"github.com/palemoky/property-tycoon/internal/game/command"
	"github.com/palemoky/property-tycoon/internal/game/event"
	"github.com/palemoky/property-tycoon/internal/game/state"
)

// Observer 接收每次提交的事件
type Observer func(events []event.Event)

// Aggregate is the authoritative log and projection of one game. It is not
// safe for concurrent use; callers serialise access per game.
type Aggregate struct {
	setup     Setup
	dice      Dice
	log       []event.Event
	state     *state.Game
	observers []Observer
}

// NewAggregate 创建空游戏，dice 为 nil 时使用随机骰子
func NewAggregate(setup Setup, dice Dice) *Aggregate {
	if dice == nil {
		dice = RandomDice{}
	}
	return &Aggregate{setup: setup, dice: dice, state: state.New()}
}

// Restore rebuilds an aggregate from a stored log. A log that cannot be
// folded is reported as an error instead of a panic.
func Restore(setup Setup, dice Dice, events []event.Event) (a *Aggregate, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ie, ok := r.(*state.InvariantError); ok {
				a, err = nil, fmt.Errorf("restore: %w", ie)
				return
			}
			panic(r)
		}
	}()

	a = NewAggregate(setup, dice)
	for _, e := range events {
		a.state.Apply(e)
	}
	a.log = append(a.log, events...)
	return a, nil
}

// Version 日志长度
func (a *Aggregate) Version() int {
	return len(a.log)
}

// State returns a copy of the current projection.
func (a *Aggregate) State() *state.Game {
	return a.state.Clone()
}

// Events returns up to limit events starting at version skip. limit <= 0
// means no limit.
func (a *Aggregate) Events(skip, limit int) []event.Event {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(a.log) {
		return nil
	}
	end := len(a.log)
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}
	return append([]event.Event(nil), a.log[skip:end]...)
}

// Decide validates cmd without changing anything.
func (a *Aggregate) Decide(cmd command.Command, expectedVersion int) ([]event.Event, error) {
	return Decide(a.state, a.setup, cmd, expectedVersion, a.dice)
}

// Commit appends decided events, folds them and notifies observers.
func (a *Aggregate) Commit(events []event.Event) {
	for _, e := range events {
		a.state.Apply(e)
	}
	a.log = append(a.log, events...)
	for _, o := range a.observers {
		o(events)
	}
}

// Execute is Decide followed by Commit.
func (a *Aggregate) Execute(cmd command.Command, expectedVersion int) ([]event.Event, error) {
	events, err := a.Decide(cmd, expectedVersion)
	if err != nil {
		return nil, err
	}
	a.Commit(events)
	return events, nil
}

// Subscribe 注册观察者，没有默认观察者
func (a *Aggregate) Subscribe(o Observer) {
	a.observers = append(a.observers, o)
}
