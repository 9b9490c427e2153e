package main

import (
	"context"
	"errors"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/VaishnaviPadulkar/solar-main/models"
	"github.com/VaishnaviPadulkar/solar-main/pkg/billscan"
	"github.com/VaishnaviPadulkar/solar-main/pkg/savings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func setupRoutes(r *gin.Engine) {
	r.POST("/api/auth/register", registerHandler)
	r.POST("/api/auth/login", loginHandler)
	r.POST("/api/admin/register", registerAdminHandler)
	r.POST("/api/admin/login", loginAdminHandler)
	r.POST("/api/add", submitContactHandler)
	r.POST("/api/calculate", createCalculationHandler)
	r.POST("/api/calculate/process-bill", processBillHandler)

	adminGroup := r.Group("")
	adminGroup.Use(jwtAuthMiddleware())
	adminGroup.GET("/api/admin/users", listUsersHandler)
	adminGroup.GET("/api/add", listContactsHandler)
	adminGroup.DELETE("/api/add/:id", deleteContactHandler)
	adminGroup.GET("/api/calculate", listCalculationsHandler)
	adminGroup.GET("/api/calculate/stats", calculationStatsHandler)
	adminGroup.DELETE("/api/calculate/:id", deleteCalculationHandler)
	adminGroup.GET("/api/calculate/uploads", listBillUploadsHandler)
}

func jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			c.Abort()
			return
		}
		tokenString := authHeader[7:]
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrInvalidKeyType
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			c.Abort()
			return
		}
		email, _ := claims["email"].(string)
		role, _ := claims["role"].(string)
		c.Set("email", email)
		if role != "" {
			c.Set("role", role)
		}
		c.Next()
	}
}

// requireAdmin aborts with 403 unless the token carries the admin role.
func requireAdmin(c *gin.Context) bool {
	role, _ := c.Get("role")
	if role != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		c.Abort()
		return false
	}
	return true
}

func generateToken(user models.User, roleName string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": user.Email,
		"role":  roleName,
		"exp":   time.Now().Add(time.Hour * 24).Unix(),
	})
	return token.SignedString(jwtSecret)
}

func roleNameOf(user models.User) string {
	if user.RoleID == nil {
		return ""
	}
	var r models.Role
	if err := db.First(&r, *user.RoleID).Error; err != nil {
		return ""
	}
	return r.Name
}

func registerHandler(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := RegisterUser(req.Name, req.Email, req.Password, "user"); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user registered successfully"})
}

func registerAdminHandler(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := RegisterUser(req.Name, req.Email, req.Password, "admin"); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "admin registered successfully"})
}

func loginHandler(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := Authenticate(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	tokenString, err := generateToken(user, roleNameOf(user))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "login successful", "token": tokenString})
}

func loginAdminHandler(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := Authenticate(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	role := roleNameOf(user)
	if role != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "not an admin account"})
		return
	}
	tokenString, err := generateToken(user, role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "login successful", "token": tokenString})
}

func listUsersHandler(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	type userView struct {
		ID        uint      `json:"id"`
		Name      string    `json:"name"`
		Email     string    `json:"email"`
		CreatedAt time.Time `json:"createdAt"`
	}
	var users []userView
	if err := db.Model(&models.User{}).Order("id desc").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, users)
}

func submitContactHandler(c *gin.Context) {
	var req struct {
		Name    string `json:"name" binding:"required"`
		Email   string `json:"email" binding:"required"`
		Phone   string `json:"phone"`
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	contact := models.Contact{Name: req.Name, Email: req.Email, Phone: req.Phone, Message: req.Message}
	if err := db.Create(&contact).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, contact)
}

func listContactsHandler(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	var contacts []models.Contact
	if err := db.Order("id desc").Limit(200).Find(&contacts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, contacts)
}

func deleteContactHandler(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	if err := db.Delete(&models.Contact{}, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "contact deleted successfully"})
}

// createCalculationHandler performs and persists a manual savings calculation.
func createCalculationHandler(c *gin.Context) {
	var req struct {
		Usage        float64  `json:"usage" binding:"required"`
		Tariff       float64  `json:"tariff" binding:"required"`
		Sunlight     *float64 `json:"sunlight"`
		Efficiency   *float64 `json:"efficiency"`
		CustomerName string   `json:"customerName"`
		BillDate     string   `json:"billDate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "usage and tariff are required fields"})
		return
	}
	in := savings.NewInputs(req.Usage, req.Tariff, req.Sunlight, req.Efficiency)
	res, err := savings.Calculate(in)
	if err != nil {
		var iie *savings.InvalidInputError
		if errors.As(err, &iie) {
			c.JSON(http.StatusBadRequest, gin.H{"error": iie.Error(), "field": iie.Field})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	rounded := res.Rounded()
	calc := models.Calculation{
		Usage: in.Usage, Tariff: in.Tariff, Sunlight: in.Sunlight, Efficiency: in.Efficiency,
		MonthlyCost: rounded.MonthlyCost, Savings: rounded.MonthlySavings, YearlySavings: rounded.YearlySavings,
		Source: "manual", CustomerName: req.CustomerName, BillDate: req.BillDate,
	}
	if err := db.Create(&calc).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"message":     "Calculation saved successfully",
		"calculation": calc,
		"breakdown":   rounded,
	})
}

func listCalculationsHandler(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	var calcs []models.Calculation
	if err := db.Order("id desc").Limit(200).Find(&calcs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": calcs, "count": len(calcs)})
}

func calculationStatsHandler(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	type stats struct {
		Total         int64
		TotalSavings  float64
		YearlySavings float64
	}
	var s stats
	row := db.Model(&models.Calculation{}).
		Select("count(*) as total, coalesce(sum(savings),0) as total_savings, coalesce(sum(yearly_savings),0) as yearly_savings").
		Row()
	if err := row.Scan(&s.Total, &s.TotalSavings, &s.YearlySavings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	avg := 0.0
	if s.Total > 0 {
		avg = s.TotalSavings / float64(s.Total)
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"totalCalculations": s.Total,
			"totalSavings":      round2(s.TotalSavings),
			"averageSavings":    round2(avg),
			"yearlySavings":     round2(s.YearlySavings),
		},
	})
}

func deleteCalculationHandler(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	res := db.Delete(&models.Calculation{}, c.Param("id"))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "calculation not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "calculation deleted successfully"})
}

// processBillHandler handles a multipart bill-image upload: run the
// extraction pipeline under a request timeout, persist the upload record,
// and respond with whatever fields were found. Null fields are an expected
// outcome, not an error; the frontend offers them for manual correction.
// When the form also carries a tariff and the pipeline derived consumed
// units, a savings calculation is performed and persisted alongside.
func processBillHandler(c *gin.Context) {
	file, err := c.FormFile("billFile")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	if file.Size > 10*1024*1024 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large (max 10MB)"})
		return
	}
	baseDir := filepath.Join(uploadBaseDir(), "bills")
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "mkdir failed"})
		return
	}
	fullPath := filepath.Join(baseDir, filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, fullPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	storePath := filepath.ToSlash(filepath.Join("bills", filepath.Base(file.Filename)))
	contentType := file.Header.Get("Content-Type")

	ctx, cancel := context.WithTimeout(c.Request.Context(), ocrTimeout())
	defer cancel()
	data, err := billscan.ExtractBillData(ctx, fullPath)
	if err != nil {
		// keep the failed upload around for admin review
		up := models.BillUpload{FileName: file.Filename, StorePath: storePath, ContentType: contentType, Failed: true, FailedReason: err.Error()}
		_ = db.Create(&up).Error
		switch {
		case errors.Is(err, billscan.ErrTimeout):
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "ocr_timeout", "detail": err.Error()})
		case errors.Is(err, billscan.ErrImageProcessing):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable_image", "detail": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ocr_failed", "detail": err.Error()})
		}
		return
	}

	up := models.BillUpload{
		FileName:        file.Filename,
		StorePath:       storePath,
		ContentType:     contentType,
		ConsumerNo:      data.ConsumerNo,
		CustomerName:    data.Name,
		BillDate:        data.BillDate,
		Amount:          data.Amount,
		CurrentReading:  data.Readings.Current,
		PreviousReading: data.Readings.Previous,
		Units:           data.Units,
		RawTextPreview:  data.RawTextPreview,
	}

	resp := gin.H{"success": true, "result": data}
	if tariffStr := c.PostForm("tariff"); tariffStr != "" && data.Units != nil {
		if tariff, perr := strconv.ParseFloat(tariffStr, 64); perr == nil {
			in := savings.NewInputs(float64(*data.Units), tariff, formFloat(c, "sunlight"), formFloat(c, "efficiency"))
			if res, cerr := savings.Calculate(in); cerr == nil {
				rounded := res.Rounded()
				calc := models.Calculation{
					Usage: in.Usage, Tariff: in.Tariff, Sunlight: in.Sunlight, Efficiency: in.Efficiency,
					MonthlyCost: rounded.MonthlyCost, Savings: rounded.MonthlySavings, YearlySavings: rounded.YearlySavings,
					Source: "bill", CustomerName: deref(data.Name), BillDate: deref(data.BillDate),
				}
				if err := db.Create(&calc).Error; err == nil {
					up.CalculationID = &calc.ID
					resp["breakdown"] = rounded
					resp["calculation"] = calc
				}
			}
		}
	}

	if err := db.Create(&up).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db save failed"})
		return
	}
	resp["uploadId"] = up.ID
	c.JSON(http.StatusOK, resp)
}

func listBillUploadsHandler(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	var ups []models.BillUpload
	if err := db.Order("id desc").Limit(100).Find(&ups).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, ups)
}

// ocrTimeout returns the per-request recognition budget (env OCR_TIMEOUT_SECONDS, default 60).
func ocrTimeout() time.Duration {
	if v := os.Getenv("OCR_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return 60 * time.Second
}

func formFloat(c *gin.Context, key string) *float64 {
	v := c.PostForm(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
