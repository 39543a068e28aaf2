package web

import (
	"bytes"
	"html/template"
	"net/http"
	"strings"

	"loan-approval/internal/common/errors"
	"loan-approval/internal/form"
	"loan-approval/internal/models"
	"loan-approval/internal/prediction"
)

const (
	actionRecalculate = "recalculate"
	actionPredict     = "predict"
)

type glossaryItem struct {
	Name        string
	Description string
}

var glossary = []glossaryItem{
	{"Age of the Applicant", "The age of the individual applying for the loan."},
	{"Gender of the Applicant", "The gender of the applicant (e.g., Male, Female)."},
	{"Person Education", "The highest education level attained by the applicant."},
	{"Person income", "The monthly or annual income of the applicant."},
	{"Person Emp Exp", "The total years of employment experience."},
	{"Person Home Ownership", "Indicates whether the applicant owns a home, rents, or lives with others."},
	{"Loan Amount", "The amount of money the applicant is requesting."},
	{"Loan Intent", "The purpose or intent of the loan (e.g., Education, Medical, Personal, etc.)."},
	{"Loan Int_rate", "The interest rate applied to the loan."},
	{"Loan Percent Income", "The percentage of the applicant's income that will go toward loan repayment."},
	{"Credit History", "The length of the applicant's credit history in years."},
	{"Credit Score", "A numerical score representing the applicant's creditworthiness."},
	{"Previous loan defaults on file", "Indicates if the applicant has any prior loan defaults on record (Yes/No)."},
}

var keyFeatures = []glossaryItem{
	{"Real-Time Loan Approval Prediction", "Instantly assess loan eligibility based on user input."},
	{"User-Friendly Interface", "Clean and intuitive layout designed for ease of use."},
	{"Detailed Input Guidance", "Explanations for every input field to assist users."},
	{"Explainable Results", "See which features weighed most in the decision when the model reports them."},
	{"Confidence Scores", "Every prediction is shown with the probability of the predicted outcome."},
	{"Responsive Design", "Works across devices: mobile, tablet and desktop."},
	{"Educational Value", "Learn how each feature influences loan approval decisions."},
}

type homePage struct {
	Title       string
	Glossary    []glossaryItem
	KeyFeatures []glossaryItem
}

type fieldView struct {
	form.FieldSpec
	Value   string
	Choices []string
	Error   string
}

type sectionView struct {
	Name   string
	Fields []fieldView
}

type importanceBar struct {
	Feature    string
	Importance float64
	Width      float64
}

type predictPage struct {
	Title       string
	LoadError   string
	Sections    []sectionView
	Caption     string
	Halt        string
	Warnings    []string
	Result      *models.PredictionResult
	Failure     string
	Review      []form.ReviewRow
	Importances []importanceBar
}

var templateFuncs = template.FuncMap{
	"lower": strings.ToLower,
	"isSelect": func(k form.Kind) bool {
		return k == form.KindSelect
	},
	"isSlider": func(k form.Kind) bool {
		return k == form.KindSlider
	},
	"bound": form.FormatBound,
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, "home", http.StatusOK, homePage{
		Title:       "Loan Approval Prediction System - Home",
		Glossary:    glossary,
		KeyFeatures: keyFeatures,
	})
}

func (s *Server) handlePredictForm(w http.ResponseWriter, r *http.Request) {
	in, ferrs := form.Parse(r.URL.Query(), s.artifacts.Choices)
	s.render(w, "predict", http.StatusOK, s.newPredictPage(in, ferrs))
}

func (s *Server) handlePredictSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form body", http.StatusBadRequest)
		return
	}

	in, ferrs := form.Parse(r.PostForm, s.artifacts.Choices)
	page := s.newPredictPage(in, ferrs)

	if r.PostForm.Get("action") != actionPredict {
		s.render(w, "predict", http.StatusOK, page)
		return
	}

	if err := ferrs.Halt(); err != nil {
		page.Halt = haltMessage(err)
		s.render(w, "predict", http.StatusOK, page)
		return
	}

	rec, warnings, err := s.svc.Prepare(in)
	if err != nil {
		page.Halt = haltMessage(err)
		page.Sections = s.sections(in, fieldErrorsOf(err))
		s.render(w, "predict", http.StatusOK, page)
		return
	}

	// Warnings and the review table render whether or not the classifier succeeds.
	page.Warnings = warnings
	page.Review = form.ReviewTable(rec)

	result, err := s.svc.Predict(r.Context(), rec)
	if err != nil {
		page.Failure = prediction.FailureMessage(err)
		s.render(w, "predict", http.StatusOK, page)
		return
	}
	result.Warnings = warnings
	page.Result = result
	page.Importances = importanceBars(result.FeatureImportances)
	s.render(w, "predict", http.StatusOK, page)
}

func (s *Server) newPredictPage(in models.FormInput, ferrs form.FieldErrors) predictPage {
	page := predictPage{
		Title:    "Loan Approval Prediction",
		Sections: s.sections(in, ferrs),
		Caption:  form.RatioCaption(form.BuildRecord(in)),
	}
	if s.artifacts.Err != nil {
		page.LoadError = s.artifacts.Err.Error()
	}
	return page
}

func (s *Server) sections(in models.FormInput, ferrs form.FieldErrors) []sectionView {
	out := make([]sectionView, 0, len(form.Sections))
	for _, name := range form.Sections {
		sec := sectionView{Name: name}
		for _, f := range form.InSection(name) {
			fv := fieldView{FieldSpec: f, Value: form.Value(in, f.Name), Error: ferrs[f.Name]}
			if f.Kind == form.KindSelect {
				fv.Choices = s.artifacts.Choices.ChoicesFor(f.Column)
			}
			sec.Fields = append(sec.Fields, fv)
		}
		out = append(out, sec)
	}
	return out
}

func haltMessage(err error) string {
	if stdErr, ok := errors.As(err); ok {
		return stdErr.Message
	}
	return err.Error()
}

func fieldErrorsOf(err error) form.FieldErrors {
	stdErr, ok := errors.As(err)
	if !ok {
		return nil
	}
	fields, _ := stdErr.Metadata["fields"].(map[string]string)
	return form.FieldErrors(fields)
}

func importanceBars(items []models.FeatureImportance) []importanceBar {
	if len(items) == 0 {
		return nil
	}
	top := items[0].Importance
	bars := make([]importanceBar, len(items))
	for i, it := range items {
		width := 0.0
		if top > 0 && it.Importance > 0 {
			width = it.Importance / top * 100
		}
		bars[i] = importanceBar{Feature: it.Feature, Importance: it.Importance, Width: width}
	}
	return bars
}

func (s *Server) render(w http.ResponseWriter, page string, status int, data interface{}) {
	var buf bytes.Buffer
	if err := s.pages[page].ExecuteTemplate(&buf, "layout.html", data); err != nil {
		s.logger.Error("template render failed", map[string]interface{}{
			"page":  page,
			"error": err,
		})
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
