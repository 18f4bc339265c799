// Package security decides whether a URL may be fetched by the extractor.
package security

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/valpere/OGScrapexter/internal/utils"
)

// SecurityConfig configures the URL validator
type SecurityConfig struct {
	AllowedSchemes    []string `yaml:"allowed_schemes" json:"allowed_schemes"`
	BlockedDomains    []string `yaml:"blocked_domains" json:"blocked_domains"`
	AllowedDomains    []string `yaml:"allowed_domains" json:"allowed_domains"`
	BlockPrivateHosts bool     `yaml:"block_private_hosts" json:"block_private_hosts"`
	MaxURLLength      int      `yaml:"max_url_length" json:"max_url_length"`
}

// DefaultSecurityConfig returns a secure default configuration
func DefaultSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		AllowedSchemes:    []string{"https", "http"},
		BlockedDomains:    []string{},
		BlockPrivateHosts: true,
		MaxURLLength:      2048,
	}
}

// Severity levels for security issues
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// SecurityValidator checks URLs against the configured policy
type SecurityValidator struct {
	allowedSchemes    []string
	blockedDomains    []string
	allowedDomains    []string
	blockPrivateHosts bool
	maxURLLength      int
}

// NewSecurityValidator creates a new security validator
func NewSecurityValidator(config *SecurityConfig) *SecurityValidator {
	if config == nil {
		config = DefaultSecurityConfig()
	}
	maxLen := config.MaxURLLength
	if maxLen <= 0 {
		maxLen = DefaultSecurityConfig().MaxURLLength
	}
	schemes := config.AllowedSchemes
	if len(schemes) == 0 {
		schemes = DefaultSecurityConfig().AllowedSchemes
	}

	return &SecurityValidator{
		allowedSchemes:    lowerAll(schemes),
		blockedDomains:    lowerAll(config.BlockedDomains),
		allowedDomains:    lowerAll(config.AllowedDomains),
		blockPrivateHosts: config.BlockPrivateHosts,
		maxURLLength:      maxLen,
	}
}

// ValidationResult represents the result of security validation
type ValidationResult struct {
	Valid     bool            `json:"valid"`
	Issues    []SecurityIssue `json:"issues"`
	Warnings  []string        `json:"warnings"`
	RiskScore int             `json:"risk_score"` // 0-100, higher is more risky
}

// SecurityIssue represents a security concern
type SecurityIssue struct {
	Type        string    `json:"type"`
	Severity    Severity  `json:"severity"`
	Message     string    `json:"message"`
	Remediation string    `json:"remediation,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Inspect performs URL security validation and reports every issue found
func (sv *SecurityValidator) Inspect(inputURL string) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Issues:   make([]SecurityIssue, 0),
		Warnings: make([]string, 0),
	}

	if len(inputURL) > sv.maxURLLength {
		result.addIssue(SecurityIssue{
			Type:        "url_length_exceeded",
			Severity:    SeverityMedium,
			Message:     fmt.Sprintf("URL length %d exceeds maximum allowed %d", len(inputURL), sv.maxURLLength),
			Remediation: "Use shorter URLs or increase max_url_length setting",
		})
	}

	parsedURL, err := url.Parse(inputURL)
	if err != nil || parsedURL.Host == "" {
		message := "URL has no host"
		if err != nil {
			message = fmt.Sprintf("Invalid URL format: %v", err)
		}
		result.addIssue(SecurityIssue{
			Type:        "invalid_url_format",
			Severity:    SeverityHigh,
			Message:     message,
			Remediation: "Ensure URL follows proper format (scheme://host/path)",
		})
		return result
	}

	if !sv.isSchemeAllowed(strings.ToLower(parsedURL.Scheme)) {
		result.addIssue(SecurityIssue{
			Type:        "disallowed_scheme",
			Severity:    SeverityHigh,
			Message:     fmt.Sprintf("Scheme '%s' not in allowed list", parsedURL.Scheme),
			Remediation: fmt.Sprintf("Use one of the allowed schemes: %s", strings.Join(sv.allowedSchemes, ", ")),
		})
	}

	host := strings.ToLower(parsedURL.Hostname())
	if sv.isDomainBlocked(host) {
		result.addIssue(SecurityIssue{
			Type:        "blocked_domain",
			Severity:    SeverityCritical,
			Message:     fmt.Sprintf("Domain '%s' is in blocked list", host),
			Remediation: "Remove domain from blocked list or use a different domain",
		})
	}
	if !sv.isDomainAllowed(host) {
		result.addIssue(SecurityIssue{
			Type:        "domain_not_allowed",
			Severity:    SeverityCritical,
			Message:     fmt.Sprintf("Domain '%s' is not in allowed list", host),
			Remediation: "Add the domain to allowed_domains",
		})
	}
	if sv.blockPrivateHosts && IsPrivateHost(host) {
		result.addIssue(SecurityIssue{
			Type:        "private_host",
			Severity:    SeverityCritical,
			Message:     fmt.Sprintf("Host '%s' is local or private", host),
			Remediation: "Disable block_private_hosts to fetch internal addresses",
		})
	}

	sv.validateForAttackPatterns(inputURL, result)

	if parsedURL.Scheme == "http" {
		result.Warnings = append(result.Warnings, "Using HTTP instead of HTTPS reduces security")
		result.RiskScore += 10
	}

	return result
}

// ValidateURL returns a URL_BLOCKED error describing the first issue, or nil
// when the URL may be fetched.
func (sv *SecurityValidator) ValidateURL(inputURL string) error {
	result := sv.Inspect(inputURL)
	if result.Valid {
		return nil
	}
	issue := result.Issues[0]
	code := utils.ErrCodeURLBlocked
	if issue.Type == "invalid_url_format" {
		code = utils.ErrCodeInvalidURL
	}
	return utils.NewError(code, issue.Message).
		WithSeverity(utils.SeverityWarning).
		WithContext("url", inputURL).
		WithContext("issue", issue.Type).
		WithUserMessage(issue.Remediation).
		Build()
}

func (vr *ValidationResult) addIssue(issue SecurityIssue) {
	issue.Timestamp = time.Now()
	vr.Issues = append(vr.Issues, issue)
	vr.Valid = false

	switch issue.Severity {
	case SeverityInfo:
		vr.RiskScore += 1
	case SeverityLow:
		vr.RiskScore += 5
	case SeverityMedium:
		vr.RiskScore += 15
	case SeverityHigh:
		vr.RiskScore += 30
	case SeverityCritical:
		vr.RiskScore += 50
	}
	if vr.RiskScore > 100 {
		vr.RiskScore = 100
	}
}

func (sv *SecurityValidator) isSchemeAllowed(scheme string) bool {
	for _, allowed := range sv.allowedSchemes {
		if scheme == allowed {
			return true
		}
	}
	return false
}

func (sv *SecurityValidator) isDomainBlocked(domain string) bool {
	for _, blocked := range sv.blockedDomains {
		if domainMatches(domain, blocked) {
			return true
		}
	}
	return false
}

// isDomainAllowed is true when no allow list is configured
func (sv *SecurityValidator) isDomainAllowed(domain string) bool {
	if len(sv.allowedDomains) == 0 {
		return true
	}
	for _, allowed := range sv.allowedDomains {
		if domainMatches(domain, allowed) {
			return true
		}
	}
	return false
}

// domainMatches matches the domain itself and its subdomains
func domainMatches(domain, pattern string) bool {
	return domain == pattern || strings.HasSuffix(domain, "."+pattern)
}

var attackPatterns = []struct {
	pattern     *regexp.Regexp
	name        string
	severity    Severity
	remediation string
}{
	{
		regexp.MustCompile(`(?i)javascript:`),
		"javascript_protocol",
		SeverityCritical,
		"JavaScript protocol can be used for XSS attacks",
	},
	{
		regexp.MustCompile(`(?i)^data:`),
		"data_protocol",
		SeverityMedium,
		"Data URLs can contain malicious content",
	},
	{
		regexp.MustCompile(`(?i)(\.\.[\\/]|%2e%2e[\\/%])`),
		"path_traversal",
		SeverityHigh,
		"Remove relative path segments from the URL",
	},
}

func (sv *SecurityValidator) validateForAttackPatterns(input string, result *ValidationResult) {
	for _, p := range attackPatterns {
		if p.pattern.MatchString(input) {
			result.addIssue(SecurityIssue{
				Type:        p.name,
				Severity:    p.severity,
				Message:     fmt.Sprintf("Detected potential attack pattern: %s", p.name),
				Remediation: p.remediation,
			})
		}
	}
}

// IsPrivateHost reports whether host is localhost or a loopback, private,
// link-local or unspecified IP literal. Names are not resolved.
func IsPrivateHost(host string) bool {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	ip := net.ParseIP(strings.Trim(host, "[]"))
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() || ip.IsUnspecified()
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
