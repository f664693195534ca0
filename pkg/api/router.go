package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/otel/trace"

	_ "menuflow/docs"
	"menuflow/pkg/logger"
	"menuflow/pkg/otel"
)

// NewRouter routes the four endpoints plus the swagger UI, with CORS and
// panic recovery around them.
func NewRouter(h *Handlers, tracer trace.Tracer) http.Handler {
	r := mux.NewRouter()
	r.Use(traceMiddleware(tracer))

	r.HandleFunc("/restaurants", h.listRestaurants).Methods(http.MethodGet)
	r.HandleFunc("/restaurants", h.createRestaurant).Methods(http.MethodPost)
	r.HandleFunc("/orders", h.placeOrder).Methods(http.MethodPost)
	r.HandleFunc("/orders", h.listOrders).Methods(http.MethodGet)

	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{log: h.log}),
		handlers.PrintRecoveryStack(false),
	)
	return recovery(cors(r))
}

func traceMiddleware(tracer trace.Tracer) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := otel.ExtractHTTP(r.Context(), r.Header)
			if tracer != nil {
				ctx = otel.InjectTracing(ctx, tracer)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type recoveryLogger struct {
	log *logger.Logger
}

func (l recoveryLogger) Println(v ...any) {
	l.log.Error(context.Background(), "panic recovered", "panic", fmt.Sprint(v...))
}
