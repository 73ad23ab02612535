package skill

// Replies. They are read aloud, so they avoid anything that does not sound.
const (
	msgWelcome      = "Навык «Аудиодневник» запущен и готов к работе. Скажите «новая запись», «найди запись», «удали запись» или «все записи»."
	msgCancelled    = "Отменено."
	msgUnrecognized = "Запрос не распознан. Попробуйте сказать «новая запись» или «все записи»."

	msgAskNewTitle    = "Придумайте название записи."
	msgDuplicateTitle = "У вас уже есть заметка с таким названием, записанная сегодня. Придумайте что-нибудь другое."
	msgTitleSaved     = "Название сохранено. Слушаю вас!"
	msgAskText        = "Я ничего не услышала. Продиктуйте текст заметки."
	msgNoteAdded      = "Новая запись успешно добавлена!"

	msgAskDeleteTitle   = "Запись с каким названием вы бы хотели удалить?"
	msgNoteDeleted      = "Запись успешно удалена!"
	msgNoSuchTitle      = "У вас нет записи с таким названием."
	msgNoNoteOnDate     = "Извините, не нашла такой заметки за этот день. Назовите другую дату."
	msgDeleteNotFound   = "Извините, не нашла такой заметки. Попробуйте снова."
	msgBadDate          = "Некорректная дата, попробуйте ещё раз."
	msgChooseDateSuffix = "Выберите интересующий вас день."

	msgAskFindTitle     = "Назовите название заметки."
	msgFindNoTitle      = "Нет записи с таким названием."
	msgFindNotOnDate    = "Не нашлось заметки с таким названием за указанный день. Попробуйте ещё раз!"
	msgFindDateNotFound = "Упс! По указанной дате ничего не нашлось. Попробуете ещё раз?"
	msgAskForm          = "Для удобства могу сократить заметку и пересказать самые важные моменты. Хотите?"
	msgAskFormAgain     = "Извините, не поняла вас! Повторите, в какой форме вы хотите услышать заметку: краткой или полной?"
	msgShortNotReady    = "Краткая версия ещё готовится, вот полный текст."
	msgNoteGone         = "Эта заметка больше не найдена."

	msgNoNotes         = "У вас не сохранено ни одной заметки. Добавьте новую по команде «новая запись»."
	msgAllNotes        = "У вас сохранены следующие заметки:"
	msgRecentNotes     = "Ваши недавние заметки:"
	msgSayNext         = "Для получения более старых заметок скажите «далее»."
	msgNoMoreNotes     = "Больше заметок нет."
	msgNextWithoutList = "Извините, не поняла вас. Сначала попросите показать все записи."
)
