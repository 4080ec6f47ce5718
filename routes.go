package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/meliem/meliem.github.io/internal/contact"
	"github.com/meliem/meliem.github.io/internal/particles"
	"go.uber.org/zap"
)

func (a *app) setupRoutes(r *gin.Engine) {
	pages := r.Group("/")
	pages.Use(a.trackVisits())

	// Home page route
	pages.GET("/", func(c *gin.Context) {
		site := a.site.Get()
		c.HTML(http.StatusOK, "index.html", gin.H{
			"title":    site.Profile.Name + " | " + site.Profile.Title,
			"site":     site,
			"featured": site.Featured(),
			"page":     "home",
		})
	})

	pages.GET("/about", func(c *gin.Context) {
		site := a.site.Get()
		c.HTML(http.StatusOK, "about.html", gin.H{
			"title": "About",
			"site":  site,
			"page":  "about",
		})
	})

	pages.GET("/experience", func(c *gin.Context) {
		c.HTML(http.StatusOK, "experience.html", gin.H{
			"title": "Experience",
			"site":  a.site.Get(),
			"page":  "experience",
		})
	})

	// Project list; HTMX search and filter requests get only the grid back
	pages.GET("/projects", func(c *gin.Context) {
		site := a.site.Get()
		filter := c.DefaultQuery("filter", "all")
		query := c.Query("q")
		data := gin.H{
			"title":      "Projects",
			"site":       site,
			"projects":   site.FilterProjects(filter, query),
			"categories": site.Categories(),
			"filter":     filter,
			"q":          query,
			"page":       "projects",
		}
		if c.GetHeader("HX-Request") == "true" {
			c.HTML(http.StatusOK, "project-list.html", data)
			return
		}
		c.HTML(http.StatusOK, "projects.html", data)
	})

	pages.GET("/projects/:id", func(c *gin.Context) {
		site := a.site.Get()
		project, ok := site.Project(c.Param("id"))
		if !ok {
			a.notFound(c)
			return
		}
		c.HTML(http.StatusOK, "project.html", gin.H{
			"title":   project.Title,
			"site":    site,
			"project": project,
			"page":    "projects",
		})
	})

	pages.GET("/skills", func(c *gin.Context) {
		site := a.site.Get()
		c.HTML(http.StatusOK, "skills.html", gin.H{
			"title":  "Skills",
			"site":   site,
			"groups": site.SkillGroups(),
			"page":   "skills",
		})
	})

	pages.GET("/contact", func(c *gin.Context) {
		c.HTML(http.StatusOK, "contact-page.html", gin.H{
			"title": "Contact",
			"site":  a.site.Get(),
			"page":  "contact",
		})
	})

	// HTMX Contact form endpoint - returns just the form HTML
	r.GET("/contact-form", func(c *gin.Context) {
		c.HTML(http.StatusOK, "contact.html", gin.H{
			"title": "Contact Me",
		})
	})

	// Work experience content
	r.GET("/work-content", func(c *gin.Context) {
		c.HTML(http.StatusOK, "work-content.html", gin.H{
			"entries": a.site.Get().Work,
		})
	})

	// Education content
	r.GET("/education-content", func(c *gin.Context) {
		c.HTML(http.StatusOK, "education-content.html", gin.H{
			"entries": a.site.Get().Education,
		})
	})

	// Handle contact form submission with HTMX
	r.POST("/contact", a.handleContact)

	r.GET("/api/particles/profile", a.handleParticleProfile)

	r.NoRoute(a.notFound)
}

func (a *app) handleContact(c *gin.Context) {
	var form contact.Form
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusBadRequest, "contact-error.html", gin.H{
			"error": "The form could not be read. Please try again.",
		})
		return
	}

	_, err := a.contact.Submit(c.Request.Context(), form)
	var ferr *contact.FieldError
	switch {
	case errors.As(err, &ferr):
		c.HTML(http.StatusOK, "contact-error.html", gin.H{
			"error": ferr.Message,
			"field": ferr.Field,
		})
	case err != nil:
		a.logger.Error("Contact submission failed", zap.Error(err))
		c.HTML(http.StatusOK, "contact-error.html", gin.H{
			"error": "Sorry, there was an error sending your message. Please try again later.",
		})
	default:
		c.HTML(http.StatusOK, "contact-success.html", gin.H{
			"success": "Thank you for your message! I'll get back to you soon.",
		})
	}
}

// handleParticleProfile seeds the homepage field. Client hints come from
// headers; the page script adds battery and viewport readings as query
// parameters since browsers do not send those.
func (a *app) handleParticleProfile(c *gin.Context) {
	hints := particles.HintsFromHeader(c.Request.Header)
	if w, err := strconv.Atoi(c.Query("width")); err == nil && w > 0 {
		hints.ViewportWidth = w
	}
	if v, err := strconv.ParseBool(c.Query("reduced")); err == nil {
		hints.ReducedMotion = hints.ReducedMotion || v
	}
	if lvl, err := strconv.ParseFloat(c.Query("battery"), 64); err == nil && lvl >= 0 && lvl <= 1 {
		hints.BatteryKnown = true
		hints.BatteryLevel = lvl
		hints.Charging, _ = strconv.ParseBool(c.Query("charging"))
	}

	opts := a.cfg.Particles
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{
		"hints":   hints,
		"profile": particles.DetectProfile(opts, hints),
		"options": opts,
	})
}

func (a *app) notFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "not-found.html", gin.H{
		"title": "Not Found",
		"site":  a.site.Get(),
		"page":  "",
	})
}
