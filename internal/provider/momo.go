package provider

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/nlduyvu/vebus-go/internal/domain"
)

const NameMoMo = "momo"

const (
	momoSuccessMessage = "Thanh toán thành công"
	momoGenericFailure = "Thanh toán thất bại. Vui lòng thử lại sau."
)

type MoMo struct {
	BaseURL     string
	PartnerCode string
	ReturnURL   string
}

func NewMoMo(baseURL, partnerCode, returnURL string) *MoMo {
	if baseURL == "" {
		baseURL = "https://test-payment.momo.vn/v2/gateway/pay"
	}
	return &MoMo{BaseURL: baseURL, PartnerCode: partnerCode, ReturnURL: returnURL}
}

func (m *MoMo) Name() string { return NameMoMo }

func (m *MoMo) PaymentURL(session *domain.BookingSession) string {
	q := url.Values{}
	q.Set("partnerCode", m.PartnerCode)
	q.Set("orderId", session.TransactionID)
	q.Set("amount", strconv.FormatInt(session.Amount, 10))
	q.Set("orderInfo", "Thanh toan ve xe "+session.BookingGroupID)
	q.Set("redirectUrl", m.ReturnURL)

	return m.BaseURL + "?" + q.Encode()
}

func (m *MoMo) QRPayload(session *domain.BookingSession) string {
	return fmt.Sprintf("momo|%s|%d|VND", session.TransactionID, session.Amount)
}

func (m *MoMo) ParseCallback(query url.Values) (*CallbackResult, error) {
	orderID := query.Get("orderId")
	if orderID == "" {
		return nil, fmt.Errorf("momo callback: missing orderId")
	}

	code := query.Get("resultCode")
	res := &CallbackResult{
		Provider:      NameMoMo,
		TransactionID: orderID,
		Code:          code,
	}

	if code == "0" || code == "00" {
		res.Success = true
		res.Message = momoSuccessMessage
		return res, nil
	}

	res.Message = momoGenericFailure

	return res, nil
}
