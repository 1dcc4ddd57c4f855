package model

import "time"

// Optional is a field that is either unset or set to a value. The zero value
// is unset.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns an Optional set to v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

func (o Optional[T]) IsSet() bool {
	return o.set
}

// Or returns the value if set, fallback otherwise.
func (o Optional[T]) Or(fallback T) T {
	if o.set {
		return o.value
	}
	return fallback
}

// Update is a partial change to an item. Unset fields are left as they are;
// nothing is ever cleared by omission.
type Update struct {
	Subject     Optional[string]
	Categories  Optional[[]string]
	WindowStart Optional[time.Time]
	WindowEnd   Optional[time.Time]

	Status    Optional[Status]
	Urgent    Optional[bool]
	Important Optional[bool]
	Checklist Optional[[]string]
	Remarks   Optional[*Remarks]
}

// Empty reports whether no field is set.
func (u Update) Empty() bool {
	return !u.Subject.IsSet() && !u.Categories.IsSet() &&
		!u.WindowStart.IsSet() && !u.WindowEnd.IsSet() &&
		!u.Status.IsSet() && !u.Urgent.IsSet() && !u.Important.IsSet() &&
		!u.Checklist.IsSet() && !u.Remarks.IsSet()
}

// PayloadUpdate returns an update that sets every payload field of p. Derived
// timestamps are not part of it.
func PayloadUpdate(p Payload) Update {
	return Update{
		Status:    Some(p.Status),
		Urgent:    Some(p.Urgent),
		Important: Some(p.Important),
		Checklist: Some(p.Checklist),
		Remarks:   Some(p.Remarks),
	}
}
