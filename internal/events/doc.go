// Package events defines the input event model and a scoped dispatcher.
//
// Hosts feed raw UI events (resize, scroll, pointer, touch) into a Bus;
// components subscribe at window, document or element-marker scope. Delivery
// is synchronous and run-to-completion: a Dispatch call returns only after
// every interested handler ran. Element-scope handlers fire before document
// and window handlers, and StopPropagation halts traversal of the outer
// scopes, matching how the original gestures were wired.
package events
