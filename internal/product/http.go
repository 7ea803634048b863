package product

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"ProductStore/pkg/kit"
)

const (
	MsgNotFound      = "Producto no encontrado"
	MsgMissingFields = "Faltan datos obligatorios"
	MsgBadJSON       = "JSON inválido"
	MsgNoRoute       = "Ruta no encontrada"
	MsgNoMethod      = "Método no permitido"

	// failParam is a manual-testing switch on the list route that forces
	// the internal error path.
	failParam = "fail"

	readyTimeout = 1 * time.Second
)

var errForcedFailure = errors.New("forced failure requested")

type Server struct {
	Store Store
	Log   *zap.Logger
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		kit.WriteError(w, http.StatusNotFound, MsgNoRoute)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		kit.WriteError(w, http.StatusMethodNotAllowed, MsgNoMethod)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", s.ready)

	r.Route("/product", func(pr chi.Router) {
		pr.Get("/", s.list)
		pr.Post("/", s.create)
		pr.Get("/{id}", s.get)
		pr.Put("/{id}", s.replace)
		pr.Delete("/{id}", s.delete)
	})

	return r
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.Store.Ping(ctx); err != nil {
		s.logger().Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, http.StatusServiceUnavailable, "not ready")
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	products, err := s.listProducts(r)
	if err != nil {
		s.internalError(w, r, "list products failed", err)
		return
	}
	kit.WriteData(w, http.StatusOK, products)
}

func (s *Server) listProducts(r *http.Request) ([]Product, error) {
	if r.URL.Query().Get(failParam) != "" {
		return nil, errForcedFailure
	}
	return s.Store.List(r.Context())
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		kit.WriteError(w, http.StatusNotFound, MsgNotFound)
		return
	}

	p, found, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.internalError(w, r, "get product failed", err, zap.Int64("id", id))
		return
	}
	if !found {
		kit.WriteError(w, http.StatusNotFound, MsgNotFound)
		return
	}
	kit.WriteData(w, http.StatusOK, p)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	in, ok := s.readInput(w, r)
	if !ok {
		return
	}

	p, err := s.Store.Create(r.Context(), in.Product())
	if err != nil {
		s.internalError(w, r, "create product failed", err)
		return
	}

	s.logger().Info("product created", zap.Int64("id", p.ID), requestID(r))
	kit.WriteData(w, http.StatusCreated, p)
}

// replace confirms the product exists before looking at the body, so an
// unknown id is reported as not found even when the body is invalid.
func (s *Server) replace(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		kit.WriteError(w, http.StatusNotFound, MsgNotFound)
		return
	}

	_, found, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.internalError(w, r, "get product failed", err, zap.Int64("id", id))
		return
	}
	if !found {
		kit.WriteError(w, http.StatusNotFound, MsgNotFound)
		return
	}

	in, ok := s.readInput(w, r)
	if !ok {
		return
	}

	p, found, err := s.Store.Replace(r.Context(), id, in.Product())
	if err != nil {
		s.internalError(w, r, "replace product failed", err, zap.Int64("id", id))
		return
	}
	if !found {
		// deleted between the existence check and the write
		kit.WriteError(w, http.StatusNotFound, MsgNotFound)
		return
	}

	s.logger().Info("product replaced", zap.Int64("id", id), requestID(r))
	kit.WriteData(w, http.StatusOK, p)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		kit.WriteError(w, http.StatusNotFound, MsgNotFound)
		return
	}

	p, found, err := s.Store.Delete(r.Context(), id)
	if err != nil {
		s.internalError(w, r, "delete product failed", err, zap.Int64("id", id))
		return
	}
	if !found {
		kit.WriteError(w, http.StatusNotFound, MsgNotFound)
		return
	}

	s.logger().Info("product deleted", zap.Int64("id", id), requestID(r))
	kit.WriteData(w, http.StatusOK, p)
}

// readInput writes the 400 response itself and reports whether the caller
// may continue.
func (s *Server) readInput(w http.ResponseWriter, r *http.Request) (Input, bool) {
	in, err := decodeInput(w, r)
	if err != nil {
		s.logger().Debug("bad request body", zap.Error(err), requestID(r))
		kit.WriteError(w, http.StatusBadRequest, MsgBadJSON)
		return Input{}, false
	}

	if err := in.Validate(); err != nil {
		s.logger().Debug("missing required fields",
			zap.Strings("fields", missingFields(err)),
			requestID(r),
		)
		kit.WriteError(w, http.StatusBadRequest, MsgMissingFields)
		return Input{}, false
	}
	return in, true
}

// internalError logs the cause and answers with the generic 500 body only.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err), requestID(r))
	s.logger().Error(msg, fields...)
	kit.WriteError(w, http.StatusInternalServerError, kit.MsgInternal)
}

// parseID reads the leading base-10 integer of the path segment, so "12abc"
// is 12. A segment with no leading digits matches no product.
func parseID(r *http.Request) (int64, bool) {
	raw := strings.TrimLeft(chi.URLParam(r, "id"), " \t\n\r")

	end := 0
	if end < len(raw) && (raw[end] == '+' || raw[end] == '-') {
		end++
	}
	digits := end
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}

	id, err := strconv.ParseInt(raw[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func requestID(r *http.Request) zap.Field {
	return zap.String("request_id", chimw.GetReqID(r.Context()))
}
