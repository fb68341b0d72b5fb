package http

import (
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/labstack/echo/v4"
)

func (s *Server) GetWebSocket(c echo.Context) error {
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader already replied with an error status
		log.FromContext(c.Request().Context()).WithError(err).Debug("WebSocket upgrade failed")
		return nil
	}

	s.hub.Serve(c.Request().Context(), conn)
	return nil
}
