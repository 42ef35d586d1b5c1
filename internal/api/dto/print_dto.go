package dto

import "github.com/fondaapp/print-fulfillment/internal/printjob"

type EnqueueJobRequest struct {
	OrderID       string `json:"order_id" binding:"required"`
	Type          string `json:"type" binding:"required"`
	PrinterTarget string `json:"printer_target"`
	RequestedBy   string `json:"requested_by"`
}

type PrintNowRequest struct {
	OrderID       string `json:"order_id" binding:"required"`
	Type          string `json:"type" binding:"required"`
	PrinterTarget string `json:"printer_target"`
}

type ListJobsRequest struct {
	Status  string `form:"status"`
	OrderID string `form:"order_id"`
	Limit   int    `form:"limit"`
}

type ListJobsResponse struct {
	Jobs []printjob.Job `json:"jobs"`
}

type DistributeTipRequest struct {
	OrderID string `json:"order_id" binding:"required"`
	Amount  string `json:"amount" binding:"required"`
}

type TipTotalsRequest struct {
	Period string `form:"period"`
	Date   string `form:"date"`
}
