package provider

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/nlduyvu/vebus-go/internal/domain"
)

const NameVNPay = "vnpay"

// vnpayMessages maps VNPay response codes to user-facing failure reasons.
// Unknown codes fall back to vnpayGenericFailure.
var vnpayMessages = map[string]string{
	"07": "Giao dịch bị nghi ngờ gian lận",
	"09": "Thẻ/Tài khoản chưa đăng ký dịch vụ InternetBanking",
	"10": "Xác thực thông tin thẻ/tài khoản không đúng quá 3 lần",
	"11": "Đã hết hạn chờ thanh toán",
	"12": "Thẻ/Tài khoản bị khóa",
	"13": "Sai mật khẩu xác thực giao dịch (OTP)",
	"24": "Giao dịch bị hủy bởi người dùng",
	"51": "Tài khoản không đủ số dư để thực hiện giao dịch",
	"65": "Tài khoản đã vượt quá hạn mức giao dịch trong ngày",
	"75": "Ngân hàng thanh toán đang bảo trì",
	"79": "Nhập sai mật khẩu thanh toán quá số lần quy định",
	"99": "Lỗi không xác định từ cổng thanh toán",
}

const (
	vnpaySuccessMessage = "Thanh toán thành công"
	vnpayGenericFailure = "Thanh toán thất bại. Vui lòng thử lại sau."
)

type VNPay struct {
	BaseURL   string
	TmnCode   string
	ReturnURL string
}

func NewVNPay(baseURL, tmnCode, returnURL string) *VNPay {
	if baseURL == "" {
		baseURL = "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"
	}
	return &VNPay{BaseURL: baseURL, TmnCode: tmnCode, ReturnURL: returnURL}
}

func (v *VNPay) Name() string { return NameVNPay }

func (v *VNPay) PaymentURL(session *domain.BookingSession) string {
	q := url.Values{}
	q.Set("vnp_Version", "2.1.0")
	q.Set("vnp_Command", "pay")
	q.Set("vnp_TmnCode", v.TmnCode)
	// VNPay expects the amount multiplied by 100.
	q.Set("vnp_Amount", strconv.FormatInt(session.Amount*100, 10))
	q.Set("vnp_CurrCode", "VND")
	q.Set("vnp_TxnRef", session.TransactionID)
	q.Set("vnp_OrderInfo", "Thanh toan ve xe "+session.BookingGroupID)
	q.Set("vnp_ReturnUrl", v.ReturnURL)

	return v.BaseURL + "?" + q.Encode()
}

func (v *VNPay) QRPayload(session *domain.BookingSession) string {
	return fmt.Sprintf("vnpay|%s|%d|VND", session.TransactionID, session.Amount)
}

func (v *VNPay) ParseCallback(query url.Values) (*CallbackResult, error) {
	txnRef := query.Get("vnp_TxnRef")
	if txnRef == "" {
		return nil, fmt.Errorf("vnpay callback: missing vnp_TxnRef")
	}

	code := query.Get("vnp_ResponseCode")
	res := &CallbackResult{
		Provider:      NameVNPay,
		TransactionID: txnRef,
		Code:          code,
	}

	if code == "00" || code == "0" {
		res.Success = true
		res.Message = vnpaySuccessMessage
		return res, nil
	}

	if msg, ok := vnpayMessages[code]; ok {
		res.Message = msg
	} else {
		res.Message = vnpayGenericFailure
	}

	return res, nil
}
