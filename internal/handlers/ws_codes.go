// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the game handler. Authentication
// failures are answered with a plain HTTP status before the upgrade.
const (
	BadSubprotocolError = 3000 // Client connected with an unsupported subprotocol.
	InvalidGameIDError  = 3003 // Target game ID in the WS URL does not exist or is invalid.
)
