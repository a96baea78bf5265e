// Package nextchamptest runs an in-process fake of the NextChamp backend
// for tests. It matches the HTTP shapes the real service exposes (auth,
// bot history and exercise analysis) without any of the analysis itself:
// uploads are recorded and answered with canned fixtures.
package nextchamptest

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultOTP is the verification code every SendOTP request "mails".
const DefaultOTP = "482913"

// exercise tokens the analysis endpoint accepts, upper- or lower-case.
var validExercises = map[string]bool{
	"VERTICAL_JUMP": true, "SHUTTLE_RUN": true, "SITUPS": true,
	"PUSHUPS": true, "PLANK_HOLD": true, "STANDING_BROAD_JUMP": true,
	"SQUATS": true, "ENDURANCE_RUN": true,
}

// RecordedUpload captures one multipart submission for assertions.
type RecordedUpload struct {
	UserID       string
	ExerciseType string
	Name         string
	Age          string
	Height       string
	Weight       string
	FileName     string
	VideoSize    int64
}

type userRecord struct {
	ID      string
	Name    string
	Email   string
	PwdHash []byte
	DOB     string
	Height  string
	Weight  string
	PhoneNo string
}

type chatRecord struct {
	Type      string    `json:"type"`
	Statement string    `json:"statement"`
	Timestamp time.Time `json:"timestamp"`
}

type storedResult struct {
	testID   string
	userID   string
	score    float64
	exercise string
	when     time.Time
	report   []byte
	video    []byte
}

// Server is the fake backend. Zero-value maps are initialized by New;
// tests point an api.Client at URL() and drive the real HTTP stack.
type Server struct {
	httpServer *httptest.Server

	mu       sync.Mutex
	users    map[string]userRecord // keyed by email
	otps     map[string]string
	chats    map[string][]chatRecord
	results  map[string]storedResult
	uploads  []RecordedUpload
	analyze  func(RecordedUpload) (int, any)
	healthOK bool
}

// New starts the fake backend on a random local port.
func New() *Server {
	gin.SetMode(gin.TestMode)
	s := &Server{
		users:    make(map[string]userRecord),
		otps:     make(map[string]string),
		chats:    make(map[string][]chatRecord),
		results:  make(map[string]storedResult),
		healthOK: true,
	}

	router := gin.New()
	auth := router.Group("/auth")
	{
		auth.POST("/email/signup", s.handleSignup)
		auth.POST("/email/signup/sendotp", s.handleSendOTP)
		auth.POST("/email/verifyotp", s.handleVerifyOTP)
		auth.POST("/email/login", s.handleLogin)
	}
	bot := router.Group("/bot")
	{
		bot.GET("/history/:userId", s.handleChatHistory)
		bot.PUT("/update", s.handleChatUpdate)
	}
	test := router.Group("/test")
	{
		test.POST("/analysetest", s.handleAnalyze)
		test.GET("/download/report/:testId", s.handleDownloadReport)
		test.GET("/download/analyzed-video/:testId", s.handleDownloadVideo)
		test.GET("/results/:userId", s.handleResults)
		test.GET("/result/:testId", s.handleResult)
		test.GET("/stats/:userId", s.handleStats)
		test.GET("/workout-plan/:userId", s.handleWorkoutPlan)
		test.GET("/health", s.handleHealth)
	}

	s.httpServer = httptest.NewServer(router)
	return s
}

// URL is the base URL tests hand to the client under test.
func (s *Server) URL() string {
	return s.httpServer.URL
}

func (s *Server) Close() {
	s.httpServer.Close()
}

// Uploads returns every analysis submission received so far.
func (s *Server) Uploads() []RecordedUpload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedUpload(nil), s.uploads...)
}

// SetAnalyzeResponse overrides the analysis endpoint: every subsequent
// upload is answered with the given status and body. Pass nil to restore
// the default success fixture.
func (s *Server) SetAnalyzeResponse(status int, body any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if body == nil {
		s.analyze = nil
		return
	}
	s.analyze = func(RecordedUpload) (int, any) { return status, body }
}

// SetHealthy flips the health endpoint.
func (s *Server) SetHealthy(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.healthOK = ok
}

// SeedUser registers an account directly, bypassing the OTP dance, and
// returns its user id.
func (s *Server) SeedUser(name, email, password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("nextchamptest: bcrypt failed: %v", err))
	}
	id := newUserID(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[email] = userRecord{
		ID:      id,
		Name:    name,
		Email:   email,
		PwdHash: hash,
		Height:  "175",
		Weight:  "70",
	}
	return id
}

// SeedResult stores a finished analysis so the download and results
// endpoints have something to serve. Returns the test id.
func (s *Server) SeedResult(userID string, score float64, report, video []byte) string {
	testID := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[testID] = storedResult{
		testID:   testID,
		userID:   userID,
		score:    score,
		exercise: "SQUATS",
		when:     time.Now().UTC(),
		report:   report,
		video:    video,
	}
	return testID
}

func newUserID(name string) string {
	slug := strings.ToLower(strings.ReplaceAll(name, " ", ""))
	if slug == "" {
		slug = "user"
	}
	return slug + "_" + uuid.NewString()[:8]
}

// --- Auth Handlers ---

func (s *Server) handleSignup(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"pwd"`
		DOB      string `json:"dob"`
		Height   string `json:"height"`
		Weight   string `json:"weight"`
		PhoneNo  string `json:"phoneno"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[req.Email]; exists {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "User with this email already exists"})
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Could not process registration"})
		return
	}
	id := newUserID(req.Username)
	s.users[req.Email] = userRecord{
		ID:      id,
		Name:    req.Username,
		Email:   req.Email,
		PwdHash: hash,
		DOB:     req.DOB,
		Height:  req.Height,
		Weight:  req.Weight,
		PhoneNo: req.PhoneNo,
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User registered successfully",
		"userid":  id,
	})
}

func (s *Server) handleSendOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	s.mu.Lock()
	s.otps[req.Email] = DefaultOTP
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"message": "OTP sent successfully"})
}

func (s *Server) handleVerifyOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
		OTP   string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	s.mu.Lock()
	stored, ok := s.otps[req.Email]
	s.mu.Unlock()
	if !ok || stored != req.OTP {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid OTP or email mismatch"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "OTP verified successfully", "email": req.Email})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"pwd" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	s.mu.Lock()
	user, ok := s.users[req.Email]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(user.PwdHash, []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid email or password"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"userid":  user.ID,
		"name":    user.Name,
		"email":   user.Email,
		"dob":     user.DOB,
		"height":  user.Height,
		"weight":  user.Weight,
		"phoneno": user.PhoneNo,
	})
}

// --- Bot Handlers ---

func (s *Server) handleChatHistory(c *gin.Context) {
	userID := c.Param("userId")
	s.mu.Lock()
	history, ok := s.chats[userID]
	out := append([]chatRecord(nil), history...)
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "User ID not found"})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleChatUpdate(c *gin.Context) {
	var req struct {
		UserID    string `json:"user_id" binding:"required"`
		Type      string `json:"type"`
		Statement string `json:"statement"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	s.mu.Lock()
	s.chats[req.UserID] = append(s.chats[req.UserID], chatRecord{
		Type:      req.Type,
		Statement: req.Statement,
		Timestamp: time.Now().UTC(),
	})
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"message": "Chat inserted successfully", "id": uuid.NewString()})
}

// --- Test Handlers ---

func (s *Server) handleAnalyze(c *gin.Context) {
	file, header, err := c.Request.FormFile("video")
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "No video file provided"})
		return
	}
	defer file.Close()
	size, _ := io.Copy(io.Discard, file)

	upload := RecordedUpload{
		UserID:       c.PostForm("user_id"),
		ExerciseType: c.PostForm("exercise_type"),
		Name:         c.PostForm("name"),
		Age:          c.PostForm("age"),
		Height:       c.PostForm("height"),
		Weight:       c.PostForm("weight"),
		FileName:     header.Filename,
		VideoSize:    size,
	}

	s.mu.Lock()
	s.uploads = append(s.uploads, upload)
	override := s.analyze
	s.mu.Unlock()

	if override != nil {
		status, body := override(upload)
		c.JSON(status, body)
		return
	}

	if !validExercises[strings.ToUpper(upload.ExerciseType)] {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": fmt.Sprintf("Invalid exercise type: %s", upload.ExerciseType),
		})
		return
	}
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".mp4", ".avi", ".mov", ".mkv":
	default:
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "Invalid video format. Please upload MP4, AVI, or MOV files.",
		})
		return
	}

	testID := uuid.NewString()
	videoPath := "analyzed_videos/analyzed_" + header.Filename

	s.mu.Lock()
	s.results[testID] = storedResult{
		testID:   testID,
		userID:   upload.UserID,
		score:    78.5,
		exercise: strings.ToUpper(upload.ExerciseType),
		when:     time.Now().UTC(),
		report:   []byte("%PDF-1.4 fake report " + testID),
		video:    []byte("fake analyzed video " + testID),
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Exercise analysis completed successfully",
		"test_id":    testID,
		"video_path": videoPath,
		"report_data": gin.H{
			"performance": gin.H{
				"overall_score":    78.5,
				"grade":            "B",
				"rep_count":        12,
				"form_accuracy":    84.2,
				"duration_seconds": 37.9,
			},
			"feedback": []string{
				"Keep your back straight during the descent.",
				"Drive through your heels on the way up.",
			},
		},
	})
}

func (s *Server) lookupResult(testID string) (storedResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.results[testID]
	return r, ok
}

func (s *Server) handleDownloadReport(c *gin.Context) {
	result, ok := s.lookupResult(c.Param("testId"))
	if !ok || result.report == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Test result not found"})
		return
	}
	c.Data(http.StatusOK, "application/pdf", result.report)
}

func (s *Server) handleDownloadVideo(c *gin.Context) {
	result, ok := s.lookupResult(c.Param("testId"))
	if !ok || result.video == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Analyzed video file not found"})
		return
	}
	c.Data(http.StatusOK, "video/mp4", result.video)
}

func (s *Server) handleResults(c *gin.Context) {
	userID := c.Param("userId")
	s.mu.Lock()
	var out []gin.H
	for _, r := range s.results {
		if r.userID != userID {
			continue
		}
		out = append(out, gin.H{
			"test_id":       r.testID,
			"user_id":       r.userID,
			"score":         r.score,
			"timestamp":     r.when,
			"exercise_type": r.exercise,
		})
	}
	s.mu.Unlock()
	if out == nil {
		out = []gin.H{}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleResult(c *gin.Context) {
	result, ok := s.lookupResult(c.Param("testId"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Test result not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"testId":    result.testID,
		"userId":    result.userID,
		"score":     result.score,
		"timestamp": result.when,
	})
}

func (s *Server) handleStats(c *gin.Context) {
	userID := c.Param("userId")
	s.mu.Lock()
	var scores []float64
	for _, r := range s.results {
		if r.userID == userID {
			scores = append(scores, r.score)
		}
	}
	s.mu.Unlock()

	stats := gin.H{
		"total_tests":    len(scores),
		"avg_score":      0.0,
		"max_score":      0.0,
		"min_score":      0.0,
		"progress_trend": "No data available",
	}
	if len(scores) > 0 {
		sum, minScore, maxScore := 0.0, scores[0], scores[0]
		for _, v := range scores {
			sum += v
			if v < minScore {
				minScore = v
			}
			if v > maxScore {
				maxScore = v
			}
		}
		stats["avg_score"] = sum / float64(len(scores))
		stats["min_score"] = minScore
		stats["max_score"] = maxScore
		stats["progress_trend"] = "stable"
		stats["recent_scores"] = scores
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleWorkoutPlan(c *gin.Context) {
	userID := c.Param("userId")
	s.mu.Lock()
	found := false
	for _, r := range s.results {
		if r.userID == userID {
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"detail": "No test results found for user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"focus": "strength",
		"weekly_schedule": []gin.H{
			{"day": "Monday", "exercise": "SQUATS", "sets": 3, "reps": 12},
			{"day": "Wednesday", "exercise": "PUSHUPS", "sets": 3, "reps": 10},
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	s.mu.Lock()
	ok := s.healthOK
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "Database not initialized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now().UTC().Format(time.RFC3339)})
}
