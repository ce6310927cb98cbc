package interfaces

type SchedulerInterface interface {
	Init()
	Stop()
	RescheduleAll()
	NotifyChange()
}
