package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	_ "embed"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/api/idtoken"

	"seatplan/solver"
)

//go:embed schema.sql
var schema string

var sugar *zap.SugaredLogger

var (
	solvesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "seatplan_solves_total",
		Help: "Solver invocations by outcome.",
	}, []string{"outcome"})
	solveDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "seatplan_solve_duration_seconds",
		Help:    "Wall time of solver invocations.",
		Buckets: prometheus.DefBuckets,
	})
)

func main() {
	godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	sugar = logger.Sugar()

	for _, key := range []string{"PGCONN", "CLIENT_ID", "CLIENT_SECRET", "ADMINS"} {
		if os.Getenv(key) == "" {
			sugar.Fatalw("missing required environment variable", "key", key)
		}
	}

	db, err := sql.Open("postgres", os.Getenv("PGCONN"))
	if err != nil {
		sugar.Fatalw("failed to open database", "error", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		sugar.Fatalw("failed to connect to database", "error", err)
	}
	sugar.Info("connected to database")

	if _, err := db.Exec(schema); err != nil {
		sugar.Fatalw("failed to apply schema", "error", err)
	}

	prometheus.MustRegister(solvesTotal, solveDuration)

	http.HandleFunc("POST /auth/google/callback", handleGoogleCallback)
	http.HandleFunc("GET /api/plans", handleListPlans(db))
	http.HandleFunc("POST /api/plans", handleCreatePlan(db))
	http.HandleFunc("GET /api/plans/shared/{token}", handleSharedPlan(db))
	http.HandleFunc("GET /api/plans/{planID}", handleGetPlan(db))
	http.HandleFunc("PUT /api/plans/{planID}", handleUpdatePlan(db))
	http.HandleFunc("DELETE /api/plans/{planID}", handleDeletePlan(db))
	http.HandleFunc("POST /api/plans/{planID}/solve", handleSolvePlan(db))
	http.HandleFunc("POST /api/plans/{planID}/improve", handleImprovePlan(db))
	http.HandleFunc("POST /api/plans/{planID}/repair", handleRepairPlan(db))
	http.Handle("GET /metrics", promhttp.Handler())
	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			http.Error(w, "db unhealthy", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintln(w, "ok")
	})

	sugar.Infow("listening", "addr", ":8080")
	sugar.Fatal(http.ListenAndServe(":8080", nil))
}

func handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	credential := r.FormValue("credential")
	if credential == "" {
		http.Error(w, "missing credential", http.StatusBadRequest)
		return
	}

	payload, err := idtoken.Validate(context.Background(), credential, os.Getenv("CLIENT_ID"))
	if err != nil {
		sugar.Warnw("failed to validate token", "error", err)
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	email := payload.Claims["email"].(string)

	profile := map[string]any{
		"email":   email,
		"name":    payload.Claims["name"],
		"picture": payload.Claims["picture"],
		"token":   signEmail(email),
	}

	writeJSON(w, profile)
}

func signEmail(email string) string {
	h := hmac.New(sha256.New, []byte(os.Getenv("CLIENT_SECRET")))
	h.Write([]byte(email))
	sig := base64.RawURLEncoding.EncodeToString(h.Sum(nil))
	return base64.RawURLEncoding.EncodeToString([]byte(email)) + "." + sig
}

func authorize(r *http.Request) (string, bool) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		return "", false
	}
	emailBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", false
	}
	email := string(emailBytes)
	if signEmail(email) != token {
		return "", false
	}
	return email, true
}

func isAdmin(email string) bool {
	return slices.ContainsFunc(strings.Split(os.Getenv("ADMINS"), ","), func(a string) bool {
		return strings.TrimSpace(a) == email
	})
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	email, ok := authorize(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return email, true
}

// requirePlanOwner authorizes the caller and checks that they own the plan
// named in the path, or are a site admin.
func requirePlanOwner(db *sql.DB, w http.ResponseWriter, r *http.Request) (string, int64, bool) {
	email, ok := requireUser(w, r)
	if !ok {
		return "", 0, false
	}
	planID, err := strconv.ParseInt(r.PathValue("planID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid plan ID", http.StatusBadRequest)
		return "", 0, false
	}
	var owner string
	if err := db.QueryRow("SELECT owner_email FROM plans WHERE id = $1", planID).Scan(&owner); err != nil {
		http.Error(w, "plan not found", http.StatusNotFound)
		return "", 0, false
	}
	if owner != email && !isAdmin(email) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return "", 0, false
	}
	return email, planID, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func loadPlanDoc(db *sql.DB, planID int64) (*solver.Document, error) {
	var raw []byte
	if err := db.QueryRow("SELECT doc FROM plans WHERE id = $1", planID).Scan(&raw); err != nil {
		return nil, err
	}
	var doc solver.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func savePlanDoc(db *sql.DB, planID int64, doc *solver.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = db.Exec("UPDATE plans SET doc = $1, updated_at = now() WHERE id = $2", raw, planID)
	return err
}

func handleListPlans(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, ok := requireUser(w, r)
		if !ok {
			return
		}

		var rows *sql.Rows
		var err error
		switch {
		case isAdmin(email) && r.URL.Query().Get("owners") != "":
			owners := strings.Split(r.URL.Query().Get("owners"), ",")
			for i := range owners {
				owners[i] = strings.TrimSpace(owners[i])
			}
			rows, err = db.Query(`SELECT id, name, owner_email, share_token, updated_at
				FROM plans WHERE owner_email = ANY($1) ORDER BY id`, pq.Array(owners))
		case isAdmin(email):
			rows, err = db.Query(`SELECT id, name, owner_email, share_token, updated_at
				FROM plans ORDER BY id`)
		default:
			rows, err = db.Query(`SELECT id, name, owner_email, share_token, updated_at
				FROM plans WHERE owner_email = $1 ORDER BY id`, email)
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		type plan struct {
			ID         int64     `json:"id"`
			Name       string    `json:"name"`
			OwnerEmail string    `json:"owner_email"`
			ShareToken string    `json:"share_token"`
			UpdatedAt  time.Time `json:"updated_at"`
		}
		plans := []plan{}
		for rows.Next() {
			var p plan
			if err := rows.Scan(&p.ID, &p.Name, &p.OwnerEmail, &p.ShareToken, &p.UpdatedAt); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			plans = append(plans, p)
		}
		writeJSON(w, plans)
	}
}

func handleCreatePlan(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, ok := requireUser(w, r)
		if !ok {
			return
		}
		var body struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}

		doc := solver.Document{
			Version: solver.DocumentVersion,
			Room:    solver.NewRoom(6, 8),
			Pupils:  []solver.Pupil{},
			Rules:   solver.RuleList{},
		}
		raw, err := json.Marshal(&doc)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		token := uuid.NewString()
		var id int64
		err = db.QueryRow(`INSERT INTO plans (name, owner_email, share_token, doc)
			VALUES ($1, $2, $3, $4) RETURNING id`, body.Name, email, token, raw).Scan(&id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"id": id, "name": body.Name, "share_token": token})
	}
}

func handleGetPlan(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, planID, ok := requirePlanOwner(db, w, r)
		if !ok {
			return
		}
		var name, owner, token string
		var raw []byte
		err := db.QueryRow(`SELECT name, owner_email, share_token, doc
			FROM plans WHERE id = $1`, planID).Scan(&name, &owner, &token, &raw)
		if err != nil {
			http.Error(w, "plan not found", http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]any{
			"id": planID, "name": name, "owner_email": owner,
			"share_token": token, "doc": json.RawMessage(raw),
		})
	}
}

func handleSharedPlan(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var raw []byte
		var name string
		err := db.QueryRow("SELECT name, doc FROM plans WHERE share_token = $1",
			r.PathValue("token")).Scan(&name, &raw)
		if err != nil {
			http.Error(w, "plan not found", http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]any{"name": name, "doc": json.RawMessage(raw)})
	}
}

func handleUpdatePlan(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, planID, ok := requirePlanOwner(db, w, r)
		if !ok {
			return
		}
		var doc solver.Document
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			http.Error(w, "invalid document: "+err.Error(), http.StatusBadRequest)
			return
		}
		if doc.Version != solver.DocumentVersion {
			http.Error(w, "unsupported document version", http.StatusBadRequest)
			return
		}
		if doc.Room == nil {
			http.Error(w, "document has no room", http.StatusBadRequest)
			return
		}
		if err := savePlanDoc(db, planID, &doc); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleDeletePlan(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, planID, ok := requirePlanOwner(db, w, r)
		if !ok {
			return
		}
		result, err := db.Exec("DELETE FROM plans WHERE id = $1", planID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if n, _ := result.RowsAffected(); n == 0 {
			http.Error(w, "plan not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type solveRequest struct {
	Restarts int     `json:"restarts"`
	Iters    int     `json:"iters"`
	T0       float64 `json:"t0"`
	T1       float64 `json:"t1"`
	Seed     *uint32 `json:"seed"`
}

func (sr *solveRequest) params() (solver.SolveParams, uint32) {
	p := solver.DefaultSolveParams
	if sr.Restarts > 0 {
		p.Restarts = sr.Restarts
	}
	if sr.Iters > 0 {
		p.Iters = sr.Iters
	}
	if sr.T0 > 0 {
		p.T0 = sr.T0
	}
	if sr.T1 > 0 {
		p.T1 = sr.T1
	}
	seed := uint32(42)
	if sr.Seed != nil {
		seed = *sr.Seed
	}
	return p, seed
}

// decodeSolveRequest reads solver parameters from the request body. An empty
// body means all defaults.
func decodeSolveRequest(r *http.Request, req *solveRequest) error {
	err := json.NewDecoder(r.Body).Decode(req)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func isValidationError(err error) bool {
	return errors.Is(err, solver.ErrNoPupils) ||
		errors.Is(err, solver.ErrNoSeats) ||
		errors.Is(err, solver.ErrCapacity) ||
		errors.Is(err, solver.ErrBadFixed) ||
		errors.Is(err, solver.ErrFixedConflict)
}

func handleSolvePlan(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, planID, ok := requirePlanOwner(db, w, r)
		if !ok {
			return
		}
		var req solveRequest
		if err := decodeSolveRequest(r, &req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		params, seed := req.params()

		doc, err := loadPlanDoc(db, planID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		prob := doc.Problem()
		lastRestart := -1
		start := time.Now()
		a, score, err := prob.Solve(params, seed, func(pr solver.Progress) {
			if pr.Restart != lastRestart {
				lastRestart = pr.Restart
				sugar.Debugw("solve progress", "plan", planID,
					"restart", pr.Restart, "best", pr.Best.Total)
			}
		})
		solveDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			solvesTotal.WithLabelValues("invalid").Inc()
			if isValidationError(err) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		solvesTotal.WithLabelValues("ok").Inc()

		doc.Assignment = a
		if err := savePlanDoc(db, planID, doc); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"assignment": a, "score": score})
	}
}

func handleImprovePlan(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, planID, ok := requirePlanOwner(db, w, r)
		if !ok {
			return
		}
		var req solveRequest
		if err := decodeSolveRequest(r, &req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		params, seed := req.params()

		doc, err := loadPlanDoc(db, planID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		prob := doc.Problem()
		start := time.Now()
		a, score, err := prob.QuickImprove(doc.Assignment, params.Iters, params.T0, params.T1, seed, nil)
		solveDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			solvesTotal.WithLabelValues("invalid").Inc()
			if isValidationError(err) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		solvesTotal.WithLabelValues("ok").Inc()

		doc.Assignment = a
		if err := savePlanDoc(db, planID, doc); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"assignment": a, "score": score})
	}
}

func handleRepairPlan(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, planID, ok := requirePlanOwner(db, w, r)
		if !ok {
			return
		}
		var req solveRequest
		if err := decodeSolveRequest(r, &req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		_, seed := req.params()

		doc, err := loadPlanDoc(db, planID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		prob := doc.Problem()
		a, err := prob.Repair(doc.Assignment, seed)
		if errors.Is(err, solver.ErrCapacity) {
			// edits can shrink the room below the pupil count; clear the
			// assignment instead of failing
			doc.Assignment = solver.Assignment{}
			if err := savePlanDoc(db, planID, doc); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			writeJSON(w, map[string]any{"assignment": doc.Assignment, "repaired": false})
			return
		}
		if err != nil {
			if isValidationError(err) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		doc.Assignment = a
		if err := savePlanDoc(db, planID, doc); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"assignment": a, "repaired": true})
	}
}
