// Package discovery finds robots on the local network.
//
// An idle robot announces itself by broadcasting a short text datagram
// to a well-known UDP port, repeating every few seconds. A Listener
// binds that port and collects announcements; FindFirst returns as
// soon as any robot shows up, FindAll keeps collecting distinct robots
// until the caller's context ends.
//
// Announcements stop once a control session is established, so
// discovery is only useful before connecting.
package discovery
