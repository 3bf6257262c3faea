package auth

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/ArthurDelaporte/Yatube-Back/internal/logs"
	"github.com/ArthurDelaporte/Yatube-Back/internal/middleware"
	"github.com/ArthurDelaporte/Yatube-Back/internal/monitoring"
	"github.com/ArthurDelaporte/Yatube-Back/internal/user"
	"github.com/ArthurDelaporte/Yatube-Back/internal/utils"
	"github.com/ArthurDelaporte/Yatube-Back/internal/web"
)

const (
	msgRequired        = "This field is required."
	msgUsernameTaken   = "A user with that username already exists."
	msgUsernameInvalid = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	msgUsernameLong    = "Ensure this value has at most 150 characters."
	msgPasswordShort   = "This password is too short. It must contain at least 8 characters."
	msgBadCredentials  = "Please enter a correct username and password."
)

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		})
	}
}

type SignupForm struct {
	Username  string `form:"username" binding:"required,max=150,username"`
	Password  string `form:"password" binding:"required,min=8"`
	Firstname string `form:"firstname" binding:"max=150"`
	Lastname  string `form:"lastname" binding:"max=150"`
}

type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`
}

type Handler struct {
	users        *user.Repository
	secret       string
	secureCookie bool
}

func NewHandler(users *user.Repository, secret string, secureCookie bool) *Handler {
	return &Handler{users: users, secret: secret, secureCookie: secureCookie}
}

// Signup GET|POST /auth/signup/
func (h *Handler) Signup(c *gin.Context) {
	route := c.FullPath()
	ctx := c.Request.Context()

	if c.Request.Method != http.MethodPost {
		web.Render(c, http.StatusOK, "signup.html", gin.H{"Form": &SignupForm{}, "Errors": map[string]string{}})
		return
	}

	var form SignupForm
	errs := map[string]string{}
	if err := c.ShouldBind(&form); err != nil {
		errs = signupErrors(err)
	}
	form.Username = strings.TrimSpace(form.Username)

	if _, ok := errs["username"]; !ok && form.Username != "" {
		exists, err := h.users.ExistsByUsername(ctx, form.Username)
		if err != nil {
			web.ServerError(c, err)
			return
		}
		if exists {
			errs["username"] = msgUsernameTaken
		}
	}
	if len(errs) > 0 {
		form.Password = ""
		web.Render(c, http.StatusOK, "signup.html", gin.H{"Form": &form, "Errors": errs})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		web.ServerError(c, err)
		return
	}
	newUser := &user.User{
		Username:     form.Username,
		Firstname:    strings.TrimSpace(form.Firstname),
		Lastname:     strings.TrimSpace(form.Lastname),
		PasswordHash: string(hash),
	}
	if err := h.users.Create(ctx, newUser); err != nil {
		web.ServerError(c, err)
		return
	}

	monitoring.SignupSuccess.Inc()
	logs.LogJSON("INFO", "User signed up", map[string]interface{}{
		"route":  route,
		"userID": newUser.ID,
	})

	if err := h.startSession(c, newUser.ID); err != nil {
		web.ServerError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// Login GET|POST /auth/login/
func (h *Handler) Login(c *gin.Context) {
	route := c.FullPath()

	if c.Request.Method != http.MethodPost {
		web.Render(c, http.StatusOK, "login.html", gin.H{"Next": c.Query("next")})
		return
	}

	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		monitoring.LoginFailure.WithLabelValues("invalid_form").Inc()
		h.loginFailed(c, &form)
		return
	}

	u, err := h.users.GetByUsername(c.Request.Context(), strings.TrimSpace(form.Username))
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			web.ServerError(c, err)
			return
		}
		monitoring.LoginFailure.WithLabelValues("unknown_user").Inc()
		logs.LogJSON("WARN", "Login for unknown user", map[string]interface{}{
			"route": route,
			"extra": form.Username,
		})
		h.loginFailed(c, &form)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(form.Password)) != nil {
		monitoring.LoginFailure.WithLabelValues("wrong_password").Inc()
		logs.LogJSON("WARN", "Wrong password", map[string]interface{}{
			"route":  route,
			"userID": u.ID,
		})
		h.loginFailed(c, &form)
		return
	}

	if err := h.startSession(c, u.ID); err != nil {
		web.ServerError(c, err)
		return
	}
	monitoring.LoginSuccess.Inc()
	logs.LogJSON("INFO", "User logged in", map[string]interface{}{
		"route":  route,
		"userID": u.ID,
	})
	c.Redirect(http.StatusFound, safeNext(form.Next))
}

// Logout GET|POST /auth/logout/
func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", h.secureCookie, true)
	logs.LogJSON("INFO", "User logged out", map[string]interface{}{
		"route":  c.FullPath(),
		"userID": c.GetString("user_id"),
	})
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) startSession(c *gin.Context, userID string) error {
	token, err := utils.IssueToken(h.secret, userID, utils.TokenTTL)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, int(utils.TokenTTL.Seconds()), "/", "", h.secureCookie, true)
	return nil
}

func (h *Handler) loginFailed(c *gin.Context, form *LoginForm) {
	web.Render(c, http.StatusOK, "login.html", gin.H{
		"Username": form.Username,
		"Next":     form.Next,
		"Error":    msgBadCredentials,
	})
}

// safeNext only follows local paths.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

func signupErrors(err error) map[string]string {
	errs := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs["__all__"] = "The submitted form could not be read."
		return errs
	}
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			errs[field] = msgRequired
		case "username":
			errs[field] = msgUsernameInvalid
		case "min":
			errs[field] = msgPasswordShort
		case "max":
			errs[field] = msgUsernameLong
		default:
			errs[field] = "Invalid value."
		}
	}
	return errs
}
