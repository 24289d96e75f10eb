package service

import "DataSentinel/internal/model"

// Notifier принимает уведомления к асинхронной доставке и не блокирует вызывающего.
type Notifier interface {
	Notify(n model.Notification)
}

// outbox копит уведомления внутри транзакции; отправляются только после фиксации.
type outbox []model.Notification

func (o *outbox) toUser(userID, kind, severity, msg string) {
	*o = append(*o, model.Notification{UserID: userID, Kind: kind, Severity: severity, Message: msg})
}

func (o *outbox) toAdmins(kind, severity, msg string) {
	*o = append(*o, model.Notification{Audience: model.AudienceAdmins, Kind: kind, Severity: severity, Message: msg})
}

func (o outbox) flush(n Notifier) {
	if n == nil {
		return
	}
	for _, item := range o {
		n.Notify(item)
	}
}
