package logdata

// Constants for generated log entries.
// This package provides the static pools the synthesizer draws from.

// Log levels
const (
	LevelInfo  = "INFO"
	LevelDebug = "DEBUG"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
	LevelTrace = "TRACE"
)

// DefaultApplication is the constant application name stamped on every entry
const DefaultApplication = "demo-app"

// LevelWeight pairs a log level with its relative frequency
type LevelWeight struct {
	Level  string
	Weight int
}

// LogLevels contains the possible log levels with their default relative frequencies.
// Order matters: the cumulative walk in the synthesizer follows it.
var LogLevels = []LevelWeight{
	{LevelInfo, 60},
	{LevelDebug, 20},
	{LevelWarn, 15},
	{LevelError, 4},
	{LevelTrace, 1},
}

// Loggers contains a list of possible logger names
var Loggers = []string{
	"com.example.demo.controller.UserController",
	"com.example.demo.service.UserService",
	"com.example.demo.repository.UserRepository",
	"com.example.demo.controller.OrderController",
	"com.example.demo.service.OrderService",
	"com.example.demo.service.PaymentService",
	"com.example.demo.security.AuthenticationFilter",
	"com.example.demo.config.DataSourceConfig",
	"org.springframework.web.servlet.DispatcherServlet",
	"org.springframework.boot.web.embedded.tomcat.TomcatWebServer",
}

// Threads contains a list of possible thread names
var Threads = []string{
	"http-nio-8080-exec-1",
	"http-nio-8080-exec-2",
	"http-nio-8080-exec-3",
	"http-nio-8080-exec-4",
	"scheduling-1",
	"task-executor-1",
	"task-executor-2",
}

// Messages contains message templates by log level. "{}" marks a placeholder.
var Messages = map[string][]string{
	LevelInfo: {
		"Application started successfully",
		"User logged in successfully",
		"Order created with ID: {}",
		"Payment processed successfully",
		"Database connection established",
		"Request completed in {}ms",
		"New user registered: {}",
		"Session created for user: {}",
		"Cache refreshed successfully",
		"Health check passed",
	},
	LevelDebug: {
		"Entering method: {}",
		"Exiting method: {}",
		"Query executed: SELECT * FROM users WHERE id = {}",
		"Cache hit for key: {}",
		"Validating request parameters",
		"Processing request from IP: {}",
		"Applying security filter",
		"Deserializing JSON payload",
		"Loading configuration from: {}",
		"Initializing bean: {}",
	},
	LevelWarn: {
		"Slow query detected: took {}ms",
		"Cache miss for key: {}",
		"Deprecated API used: {}",
		"Retry attempt {} for operation",
		"Queue size approaching limit: {}",
		"Connection pool utilization high: {}%",
		"Session timeout for user: {}",
		"Invalid input received: {}",
		"Rate limit approaching for IP: {}",
		"Configuration value missing, using default",
	},
	LevelError: {
		"Failed to process payment: {}",
		"Database connection error: {}",
		"Authentication failed for user: {}",
		"Unable to send email notification",
		"External API call failed: {}",
		"Invalid JSON payload received",
		"Resource not found: {}",
		"Permission denied for user: {}",
		"Transaction rollback: {}",
		"Unexpected exception: {}",
	},
	LevelTrace: {
		"Method trace: {} with parameters: {}",
		"SQL statement: {}",
		"HTTP request headers: {}",
		"Request body: {}",
		"Response body: {}",
	},
}

// ExceptionClasses contains a list of possible exception class names
var ExceptionClasses = []string{
	"java.sql.SQLException",
	"org.springframework.web.client.HttpClientErrorException",
	"java.io.IOException",
	"java.lang.NullPointerException",
	"javax.validation.ValidationException",
	"org.springframework.security.access.AccessDeniedException",
	"com.example.demo.exception.ResourceNotFoundException",
	"com.example.demo.exception.PaymentException",
}

// ExceptionMessages contains a list of possible exception message templates
var ExceptionMessages = []string{
	"Connection timeout after 30000ms",
	"Invalid credentials provided",
	"Resource with ID {} not found",
	"Payment gateway returned error code: {}",
	"Validation failed for field: {}",
	"Database constraint violation",
	"API rate limit exceeded",
	"Session expired",
}

// Words contains the generic placeholder substitutes
var Words = []string{"alpha", "beta", "gamma", "delta"}

// LevelNames returns the level names in weight order
func LevelNames() []string {
	names := make([]string, len(LogLevels))
	for i, lw := range LogLevels {
		names[i] = lw.Level
	}
	return names
}

// IsValidLevel reports whether level is one of the known log levels
func IsValidLevel(level string) bool {
	for _, lw := range LogLevels {
		if lw.Level == level {
			return true
		}
	}
	return false
}
