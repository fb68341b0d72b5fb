package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	echoHTTP "github.com/ThreeDotsLabs/go-event-driven/common/http"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"rentals/entity"
	"rentals/tracing"
)

const shutdownTimeout = 10 * time.Second

type Booker interface {
	Book(ctx context.Context, authCtx entity.AuthContext, req entity.BookingRequest) (entity.BookingResult, error)
}

type VehiclesRepository interface {
	Insert(ctx context.Context, vehicle entity.Vehicle) error
	Exists(ctx context.Context, vehicleMake, model, vehicleType, location string) (bool, error)
	Find(ctx context.Context, filter entity.VehicleFilter) ([]entity.Vehicle, error)
}

type RentalsRepository interface {
	Find(ctx context.Context, filter entity.RentalFilter) ([]entity.Rental, error)
}

type UsersRepository interface {
	Store(ctx context.Context, user entity.User) error
	GetByEmail(ctx context.Context, email string) (entity.User, error)
}

type TokenService interface {
	Issue(user entity.User) (string, error)
	Parse(token string) (entity.AuthContext, error)
}

type EventLogger interface {
	Emit(ctx context.Context, eventType string, details map[string]any)
}

type NotificationHub interface {
	Serve(ctx context.Context, conn *websocket.Conn)
}

type Server struct {
	addr         string
	e            *echo.Echo
	upgrader     websocket.Upgrader
	booker       Booker
	vehiclesRepo VehiclesRepository
	rentalsRepo  RentalsRepository
	usersRepo    UsersRepository
	tokens       TokenService
	events       EventLogger
	hub          NotificationHub
}

func NewServer(
	addr string,
	booker Booker,
	vehiclesRepo VehiclesRepository,
	rentalsRepo RentalsRepository,
	usersRepo UsersRepository,
	tokens TokenService,
	events EventLogger,
	hub NotificationHub,
) *Server {
	e := echoHTTP.NewEcho()
	e.Validator = newRequestValidator()
	// existing clients call /book/, /ws/ and so on
	e.Pre(middleware.RemoveTrailingSlash())

	server := &Server{
		addr: addr,
		e:    e,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// notifications carry no private data, any origin may listen
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		booker:       booker,
		vehiclesRepo: vehiclesRepo,
		rentalsRepo:  rentalsRepo,
		usersRepo:    usersRepo,
		tokens:       tokens,
		events:       events,
		hub:          hub,
	}

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("", otelecho.Middleware(tracing.ServiceName), server.resolveAuthContext)

	api.POST("/register", server.PostRegister)
	api.POST("/login", server.PostLogin)

	api.POST("/vehicles", server.PostVehicles)
	api.GET("/vehicles", server.GetVehicles)
	api.GET("/browse", server.GetBrowse)

	api.POST("/book", server.PostBook)

	api.GET("/rental-history/:customer_id", server.GetRentalHistory)
	api.GET("/all-rentals", server.GetAllRentals)

	e.GET("/ws", server.GetWebSocket)

	return server
}

func (s *Server) Run(ctx context.Context) error {
	// hijacked websocket connections are not closed by Shutdown, they follow ctx instead
	s.e.Server.BaseContext = func(net.Listener) context.Context {
		return ctx
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := s.e.Shutdown(shutdownCtx)
		if err != nil {
			log.FromContext(ctx).WithError(err).Error("failed to shutdown HTTP server")
		}
	}()

	log.FromContext(ctx).WithField("addr", s.addr).Info("[HTTP] server listening")
	if err := s.e.Start(s.addr); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.e.ServeHTTP(w, r)
}
