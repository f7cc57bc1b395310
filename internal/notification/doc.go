// Package notification decides whether and through which channels an in-game
// message reaches a player.
//
// A send flows through three steps:
//
//  1. The Gateway checks the player's opt-out state and renders the message
//     from a locale template (Renderer).
//  2. The Gateway offers a fresh Event to every registered Observer, in
//     registration order. Any observer may cancel it or rewrite its text.
//  3. If the event survived, the Dispatcher looks up the category's
//     DeliverySettings in the Registry and writes to the enabled channels.
//
// AdminNotifier and SensitivePolicy build the admin broadcast and command
// confirmation flows on top of the same Renderer.
//
// All operations are synchronous. Collaborators (locale lookup, permissions,
// the player roster, the client transport) are consumed through the narrow
// interfaces in ports.go.
package notification
