package http

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/neuropulse/neuropulse-server/internal/images"
	"github.com/neuropulse/neuropulse-server/internal/mcq"
)

const maxUploadBytes = 20 << 20 // whole multipart form

// imageRoles maps multipart file fields to stored roles and their WebP
// quality. Explanations are often dense diagrams, so they get a bit more.
var imageRoles = []struct {
	field   string
	role    string
	quality float32
}{
	{"stem_image", "stem", 88},
	{"option_a_image", "option_a", 88},
	{"option_b_image", "option_b", 88},
	{"option_c_image", "option_c", 88},
	{"option_d_image", "option_d", 88},
	{"explanation_image", "explanation", 90},
}

type submitForm struct {
	Status           string `validate:"omitempty,oneof=draft ready"`
	StemText         string `validate:"max=4000"`
	StemVideoURL     string `validate:"omitempty,url"`
	OptionAText      string `validate:"max=2000"`
	OptionBText      string `validate:"max=2000"`
	OptionCText      string `validate:"max=2000"`
	OptionDText      string `validate:"max=2000"`
	CorrectOption    string `validate:"required,oneof=A B C D a b c d"`
	ExplanationText  string `validate:"max=8000"`
	KeyLearningPoint string `validate:"max=500"`
	Author           string `validate:"max=200"`
}

// SubmitMCQHandler accepts a multipart MCQ draft, allocates its id,
// transcodes any attached images to WebP and appends the row to the staging
// sheet with status=draft. Publishing is a separate, explicit step.
func SubmitMCQHandler(alloc mcq.Allocator, staging mcq.StagingStore, uploader *images.Uploader, log *logrus.Logger) http.HandlerFunc {
	validate := validator.New()

	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart form (max 20MB)")
			return
		}

		form := submitForm{
			Status:           strings.ToLower(strings.TrimSpace(r.FormValue("status"))),
			StemText:         strings.TrimSpace(r.FormValue("stem_text")),
			StemVideoURL:     strings.TrimSpace(r.FormValue("stem_video_url")),
			OptionAText:      strings.TrimSpace(r.FormValue("option_a_text")),
			OptionBText:      strings.TrimSpace(r.FormValue("option_b_text")),
			OptionCText:      strings.TrimSpace(r.FormValue("option_c_text")),
			OptionDText:      strings.TrimSpace(r.FormValue("option_d_text")),
			CorrectOption:    strings.TrimSpace(r.FormValue("correct_option")),
			ExplanationText:  strings.TrimSpace(r.FormValue("explanation_text")),
			KeyLearningPoint: strings.TrimSpace(r.FormValue("key_learning_point")),
			Author:           strings.TrimSpace(r.FormValue("author")),
		}
		if err := validate.Struct(form); err != nil {
			writeError(w, http.StatusBadRequest, validationMessage(err))
			return
		}

		id, err := alloc.AllocateID(r.Context())
		if err != nil {
			log.Errorf("admin: allocate mcq id: %v", err)
			writeError(w, http.StatusInternalServerError, "could not allocate MCQ id")
			return
		}

		imageKeys := map[string]string{}
		for _, ir := range imageRoles {
			f, _, err := r.FormFile(ir.field)
			if err != nil {
				continue // field absent
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				writeError(w, http.StatusBadRequest, "could not read uploaded file "+ir.field)
				return
			}
			res, err := uploader.UploadWebP(r.Context(), id.ID, ir.role, data, ir.quality)
			if err != nil {
				if errors.Is(err, images.ErrInvalidImage) {
					writeError(w, http.StatusBadRequest, ir.field+": "+err.Error())
					return
				}
				log.Errorf("admin: upload %s for %s: %v", ir.field, id.ID, err)
				writeError(w, http.StatusInternalServerError, "image upload failed")
				return
			}
			imageKeys[ir.role] = res.Key
		}

		status := form.Status
		if status == "" {
			status = mcq.StatusDraft
		}

		now := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
		staged := mcq.StagedMCQ{
			MCQID:               id.ID,
			Status:              status,
			CreatedAt:           now,
			UpdatedAt:           now,
			StemText:            form.StemText,
			StemImageKey:        imageKeys["stem"],
			StemVideoURL:        form.StemVideoURL,
			OptionAText:         form.OptionAText,
			OptionAImageKey:     imageKeys["option_a"],
			OptionBText:         form.OptionBText,
			OptionBImageKey:     imageKeys["option_b"],
			OptionCText:         form.OptionCText,
			OptionCImageKey:     imageKeys["option_c"],
			OptionDText:         form.OptionDText,
			OptionDImageKey:     imageKeys["option_d"],
			CorrectOption:       strings.ToUpper(form.CorrectOption),
			ExplanationText:     form.ExplanationText,
			ExplanationImageKey: imageKeys["explanation"],
			KeyLearningPoint:    form.KeyLearningPoint,
			Author:              form.Author,
			IsLatest:            true,
		}

		if err := staging.AppendRow(r.Context(), mcq.StagedToRow(staged)); err != nil {
			log.Errorf("admin: append staging row for %s: %v", id.ID, err)
			writeError(w, http.StatusBadGateway, "could not write to staging sheet")
			return
		}

		log.Infof("admin: staged new MCQ %s (status %s, author %q)", id.ID, status, form.Author)
		writeJSON(w, http.StatusCreated, map[string]any{
			"ok":         true,
			"mcq_id":     id.ID,
			"status":     status,
			"image_keys": imageKeys,
		})
	}
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch fe := verrs[0]; fe.Field() {
		case "CorrectOption":
			return "correct_option must be A/B/C/D"
		case "StemVideoURL":
			return "stem_video_url must be a valid URL"
		default:
			return fe.Field() + " is invalid"
		}
	}
	return "invalid submission"
}
