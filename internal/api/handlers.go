package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"swipewrite/internal/domain"
)

var errImageTooLarge = fmt.Errorf("image exceeds %d bytes", maxImageBytes)

type chatRequest struct {
	Message string `json:"message"`
}

type extractRequest struct {
	URL string `json:"url"`
}

type summarizeRequest struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err)
		return
	}

	reply, err := s.chat.Chat(r.Context(), req.Message)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"response": reply})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes+maxJSONBytes)
	if err := r.ParseMultipartForm(maxJSONBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", fmt.Errorf("parse multipart form: %w", err))
		return
	}

	message := r.FormValue("message")
	if message == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", errors.New("message is required"))
		return
	}

	image, err := readImage(r)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errImageTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, status, "invalid_request", err)
		return
	}

	reply, err := s.chat.Analyze(r.Context(), message, image)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	if reply.Image {
		writeJSON(w, http.StatusOK, map[string]string{"image_response": reply.Text})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"response": reply.Text})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err)
		return
	}

	url := strings.TrimSpace(req.URL)
	if url == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", errors.New("url is required"))
		return
	}

	content, err := s.extractor.Extract(r.Context(), url)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": content.URL, "content": content.Text})
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err)
		return
	}

	text := req.Text
	url := strings.TrimSpace(req.URL)

	switch {
	case url != "":
		content, err := s.extractor.Extract(r.Context(), url)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		text = content.Text
	case strings.TrimSpace(text) == "":
		writeError(w, http.StatusBadRequest, "invalid_request", errors.New("text or url is required"))
		return
	}

	summary, err := s.summarizer.Summarize(r.Context(), text)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	response := map[string]string{"summary": summary}
	if url != "" {
		response["url"] = url
	}

	writeJSON(w, http.StatusOK, response)
}

func readImage(r *http.Request) (*domain.Image, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, errImageTooLarge
	}
	if len(data) == 0 {
		return nil, nil
	}

	mediaType := http.DetectContentType(data)
	if !strings.HasPrefix(mediaType, "image/") {
		mediaType = header.Header.Get("Content-Type")
	}

	return &domain.Image{Data: data, MediaType: mediaType}, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if err = json.NewDecoder(bytes.NewReader(body)).Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, kind string, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error(), "kind": kind})
}
