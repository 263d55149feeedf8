// Package notifications tells the study administrator about rating events.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and degrades to a no-op when notifications are disabled. The
// CSV export can be attached to a message so the administrator receives the
// results without opening the developer view.
package notifications
