package domain

// FeatureFlags gate pipeline stages without code changes. A snapshot is
// loaded once at the start of each worker invocation and never mutated;
// if the flag source cannot be read, the stage fails closed (disabled).
type FeatureFlags struct {
	EnableAssignmentService    bool `json:"enable_assignment_service" yaml:"enable_assignment_service"`
	EnableNotificationService  bool `json:"enable_notification_service" yaml:"enable_notification_service"`
	EnableEmailNotifications   bool `json:"enable_email_notifications" yaml:"enable_email_notifications"`
	EnableSMSNotifications     bool `json:"enable_sms_notifications" yaml:"enable_sms_notifications"`
	EnableTwilioSMS            bool `json:"enable_twilio_sms" yaml:"enable_twilio_sms"`
	EnableSNSSMS               bool `json:"enable_sns_sms" yaml:"enable_sns_sms"`
}

// SMSEnabled reports whether any SMS transport can be used at all.
func (f FeatureFlags) SMSEnabled() bool {
	return f.EnableSMSNotifications && (f.EnableTwilioSMS || f.EnableSNSSMS)
}
