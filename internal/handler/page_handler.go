package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/songbird/internal/service"
	"go.uber.org/zap"
)

// ShowAboutEditor renders the admin editor for the about page.
func (a *API) ShowAboutEditor(c *gin.Context) {
	page, err := a.pages.GetAbout()
	if err != nil {
		a.logError(c, "load about page", err)
		page = service.DefaultAboutPage()
	}

	a.renderHTML(c, http.StatusOK, "admin_edit_about.html", gin.H{
		"title": "Edit About Page",
		"about": page,
	})
}

// UpdateAboutPage saves the author name, bio and optional new photo.
func (a *API) UpdateAboutPage(c *gin.Context) {
	input := service.AboutInput{
		AuthorName: c.PostForm("author_name"),
		AuthorBio:  c.PostForm("author_bio_text"),
	}

	if header, err := c.FormFile("author_photo"); err == nil && header.Filename != "" {
		stored, err := a.uploads.Save(header)
		if err != nil {
			a.logger.Warn("author photo rejected", zap.Error(err), zap.String("filename", header.Filename))
		} else {
			input.AuthorPhoto = stored.Filename
		}
	}

	if _, err := a.pages.SaveAbout(input); err != nil {
		if errors.Is(err, service.ErrAboutAuthorRequired) {
			addFlash(c, flashError, "Author name is required.")
			a.renderHTML(c, http.StatusBadRequest, "admin_edit_about.html", gin.H{
				"title": "Edit About Page",
				"about": gin.H{"AuthorName": input.AuthorName, "AuthorBio": input.AuthorBio},
			})
			return
		}
		a.logError(c, "save about page", err)
		redirectWithFlash(c, "/admin/edit-about", flashError, "Could not save the about page.")
		return
	}

	redirectWithFlash(c, "/admin", flashSuccess, "About page updated successfully!")
}
