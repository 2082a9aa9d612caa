// Package plugin lets application code extend a session with optional,
// independently activated handlers (roster management, message archive
// lookups, custom IQ extensions, ...) without core knowing anything
// about them.
//
// The original implementation scans @bind/@stanza/@iq-decorated methods
// off a plugin class at class-definition time, using a metaclass to
// merge the resulting event/stanza tables across a subclass hierarchy.
// Go has neither decorators nor metaclasses, so a Descriptor declares
// the same information as data: a constructor plus explicit lists of
// the stanza selectors and events the constructed instance handles.
// Registry.Compile merges a set of Descriptors once, ahead of time,
// into a Compiled value two methods away from state.State's own
// installer/activator hooks.
package plugin
