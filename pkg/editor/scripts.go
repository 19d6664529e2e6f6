package editor

import (
	"encoding/json"
	"fmt"
)

// The editor surface offers no stable automation API, so every step reads
// the live DOM through an evaluated expression. Scripts return plain objects
// so results survive the protocol's by-value serialization. Parameters are
// injected as JSON literals, never by string concatenation.

func jsString(s string) string {
	encoded, _ := json.Marshal(s)
	return string(encoded)
}

func jsStrings(values []string) string {
	encoded, _ := json.Marshal(values)
	return string(encoded)
}

// editorReadyScript reports whether the SmartEditor ONE surface has loaded.
const editorReadyScript = `
(function() {
    const seBody = document.querySelector('.se-body, .__se-body');
    const seContent = document.querySelector('.se-content');
    const titleInput = document.querySelector('.se-title-input, [contenteditable="true"]');
    return {
        ready: !!(seBody || seContent || titleInput),
        url: window.location.href
    };
})()`

// writeLinkScript searches the blog's mainFrame iframe for the write-post
// entry point and returns its href. The frame markup has two generations:
// an image button and a plain text link.
const writeLinkScript = `
(function() {
    const mainFrame = document.getElementById('mainFrame');
    if (!mainFrame || !mainFrame.contentDocument) return { found: false };
    const frameDoc = mainFrame.contentDocument;

    const writeImg = frameDoc.querySelector('img[src*="img_write_btn"]');
    if (writeImg && writeImg.parentElement && writeImg.parentElement.href) {
        return { found: true, href: writeImg.parentElement.href };
    }

    const links = frameDoc.querySelectorAll('a');
    for (const link of links) {
        if (link.textContent.trim() === '글쓰기' && link.href) {
            return { found: true, href: link.href };
        }
        if (link.href && link.href.includes('postwrite')) {
            return { found: true, href: link.href };
        }
    }
    return { found: false };
})()`

// draftPromptScript finds the resume-draft modal and clicks its discard
// button, so each run starts from an empty document.
const draftPromptScript = `
(function() {
    const promptTexts = ['작성 중인 글이 있습니다', '임시저장된 글', '작성하던 글이 있습니다', '이어서 작성하시겠습니까'];
    const discardTexts = ['작성 취소', '취소', '새로 작성', '아니요', '새글 작성'];

    const containers = document.querySelectorAll('[class*="modal"], [class*="layer"], [class*="popup"], [class*="dialog"], [role="dialog"]');
    for (const container of containers) {
        if (container.offsetParent === null) continue;
        const text = container.innerText;
        if (!promptTexts.some(t => text.includes(t))) continue;

        const buttons = container.querySelectorAll('button');
        for (const btn of buttons) {
            if (discardTexts.includes(btn.textContent.trim())) {
                btn.click();
                return { found: true, clicked: btn.textContent.trim() };
            }
        }
    }
    return { found: false };
})()`

// helpOverlayScript closes the onboarding overlays the editor shows on the
// right side of a fresh session. Close controls that sit left of the viewport
// midline are skipped so editor chrome is never clicked by accident.
const helpOverlayScript = `
(function() {
    const closeSelectors = [
        '[class*="help"] [class*="close"]',
        '[class*="guide"] [class*="close"]',
        '[class*="tooltip"] [class*="close"]',
        '[class*="popup"] [class*="close"]',
        '[class*="layer"] [class*="close"]',
        'button[class*="close"]',
        'button[aria-label*="닫기"]',
        'button[aria-label*="close"]',
        '[class*="btn_close"]',
        '[class*="close_btn"]',
        '[class*="help_close"]',
        '[class*="guide_close"]',
        '[class*="side"] [class*="close"]',
        '[class*="panel"] [class*="close"]',
        '.se-help-panel-close',
        '.se-popup-close',
        '[class*="help_panel"] button'
    ];
    let closed = 0;
    for (const sel of closeSelectors) {
        for (const el of document.querySelectorAll(sel)) {
            if (el.offsetParent === null || el.offsetWidth === 0) continue;
            const rect = el.getBoundingClientRect();
            if (rect.left > window.innerWidth / 2) {
                el.click();
                closed++;
            }
        }
    }
    const dismissTexts = ['닫기', '✕', '×', 'X', '확인'];
    for (const el of document.querySelectorAll('button, a, span')) {
        const text = el.textContent.trim();
        if ((dismissTexts.includes(text) || text.includes('다시 보지 않기')) && el.offsetParent !== null) {
            const rect = el.getBoundingClientRect();
            if (rect.left > window.innerWidth / 2 || rect.top < 200) {
                el.click();
                closed++;
            }
        }
    }
    return { closed: closed };
})()`

// titlePositionScript locates the title paragraph, preferring the
// placeholder text over the structural class.
const titlePositionScript = `
(function() {
    for (const el of document.querySelectorAll('.se-text-paragraph')) {
        const placeholder = el.querySelector('.se-placeholder');
        if (placeholder && placeholder.textContent.includes('제목')) {
            const rect = el.getBoundingClientRect();
            return { found: true, x: rect.left + rect.width / 2, y: rect.top + rect.height / 2 };
        }
    }
    const titleEl = document.querySelector('.se-title-text .se-text-paragraph');
    if (titleEl) {
        const rect = titleEl.getBoundingClientRect();
        return { found: true, x: rect.left + rect.width / 2, y: rect.top + rect.height / 2 };
    }
    return { found: false };
})()`

// bodyPositionScript locates the first text paragraph that is not part of
// the document title.
const bodyPositionScript = `
(function() {
    for (const el of document.querySelectorAll('.se-text-paragraph')) {
        const placeholder = el.querySelector('.se-placeholder');
        const isTitle = el.closest('.se-title-text') ||
                        el.closest('.se-documentTitle') ||
                        (placeholder && placeholder.textContent.includes('제목'));
        if (!isTitle) {
            const rect = el.getBoundingClientRect();
            return { found: true, x: rect.left + rect.width / 2, y: rect.top + rect.height / 2 };
        }
    }
    const contentEl = document.querySelector('.se-component.se-text .se-text-paragraph');
    if (contentEl) {
        const rect = contentEl.getBoundingClientRect();
        return { found: true, x: rect.left + rect.width / 2, y: rect.top + rect.height / 2 };
    }
    return { found: false };
})()`

// headerPublishScript locates the header publish button that opens the
// publish dialog. The y < 100 guard rejects the dialog's own publish button,
// which carries the same label.
const headerPublishScript = `
(function() {
    const headerSelectors = [
        'header button[class*="publish"]',
        '[class*="header"] button[class*="publish"]',
        'button[class*="publish_btn__"]',
        '[class*="publish_btn_area"] button'
    ];
    for (const sel of headerSelectors) {
        const btn = document.querySelector(sel);
        if (btn && btn.offsetParent !== null) {
            const rect = btn.getBoundingClientRect();
            if (rect.top < 100) {
                return { found: true, x: rect.left + rect.width / 2, y: rect.top + rect.height / 2 };
            }
        }
    }
    for (const btn of document.querySelectorAll('button')) {
        if (btn.textContent.trim() === '발행' && btn.offsetParent !== null) {
            const rect = btn.getBoundingClientRect();
            if (rect.top < 100) {
                return { found: true, x: rect.left + rect.width / 2, y: rect.top + rect.height / 2 };
            }
        }
    }
    return { found: false };
})()`

// dialogPresenceScript reports whether the publish dialog is open, either by
// a dialog container class or by the publish label appearing twice.
const dialogPresenceScript = `
(function() {
    const indicators = [
        '[class*="publish_layer"]',
        '[class*="publishLayer"]',
        '[class*="publish_setting"]',
        '[class*="publish_popup"]',
        '[class*="tag_input"]'
    ];
    for (const sel of indicators) {
        const el = document.querySelector(sel);
        if (el && el.offsetParent !== null) return { found: true };
    }
    let publishButtons = 0;
    for (const btn of document.querySelectorAll('button')) {
        if (btn.textContent.trim() === '발행' && btn.offsetParent !== null) publishButtons++;
    }
    return { found: publishButtons >= 2 };
})()`

// categoryOpenScript opens the category dropdown inside the publish dialog.
const categoryOpenScript = `
(function() {
    const selectors = [
        '[class*="category"] select',
        '[class*="category"] button',
        'select[class*="category"]',
        '[class*="categorySelect"]'
    ];
    for (const sel of selectors) {
        const el = document.querySelector(sel);
        if (el && el.offsetParent !== null) {
            el.click();
            return { clicked: true };
        }
    }
    return { clicked: false };
})()`

// categorySelectScript picks the dropdown entry whose text contains name.
func categorySelectScript(name string) string {
	return fmt.Sprintf(`
(function() {
    const target = %s;
    const items = document.querySelectorAll('[class*="category"] li, [class*="category"] option, [role="option"]');
    for (const item of items) {
        if (item.textContent.includes(target)) {
            item.click();
            return { clicked: true };
        }
    }
    return { clicked: false };
})()`, jsString(name))
}

// tagInputScript locates the tag input field inside the publish dialog.
const tagInputScript = `
(function() {
    const selectors = [
        'input[class*="tag_input"]',
        'input[placeholder*="태그"]',
        '[class*="tag"] input'
    ];
    for (const sel of selectors) {
        const input = document.querySelector(sel);
        if (input && input.offsetParent !== null) {
            const rect = input.getBoundingClientRect();
            return { found: true, x: rect.left + rect.width / 2, y: rect.top + rect.height / 2 };
        }
    }
    return { found: false };
})()`

// visibilityScript locates the visibility radio control carrying label.
// The label, the radio input, and bare text nodes are tried in order.
func visibilityScript(label string) string {
	return fmt.Sprintf(`
(function() {
    const target = %s;
    for (const label of document.querySelectorAll('label')) {
        if (label.textContent.includes(target) && label.offsetParent !== null) {
            const rect = label.getBoundingClientRect();
            return { found: true, x: rect.left + rect.width / 2, y: rect.top + rect.height / 2 };
        }
    }
    for (const radio of document.querySelectorAll('input[type="radio"]')) {
        const parent = radio.closest('label, div, span');
        if (parent && parent.textContent.includes(target) && radio.offsetParent !== null) {
            const rect = radio.getBoundingClientRect();
            return { found: true, x: rect.left + rect.width / 2, y: rect.top + rect.height / 2 };
        }
    }
    for (const el of document.querySelectorAll('span, div')) {
        if (el.textContent.trim() === target && el.offsetParent !== null) {
            const rect = el.getBoundingClientRect();
            return { found: true, x: rect.left + rect.width / 2, y: rect.top + rect.height / 2 };
        }
    }
    return { found: false };
})()`, jsString(label))
}

// toggleScript locates the checkbox whose surrounding text matches any of
// texts and returns its position only when its checked state differs from
// the desired one; an already-correct toggle reports noChange.
func toggleScript(texts []string, check bool) string {
	action := "uncheck"
	if check {
		action = "check"
	}
	return fmt.Sprintf(`
(function() {
    const searchTexts = %s;
    const action = %s;
    for (const cb of document.querySelectorAll('input[type="checkbox"]')) {
        const parent = cb.closest('label, div, li');
        if (!parent) continue;
        if (!searchTexts.some(t => parent.textContent.includes(t))) continue;
        if (cb.offsetParent === null) continue;

        if ((action === 'check') === cb.checked) {
            return { found: true, noChange: true };
        }
        const rect = cb.getBoundingClientRect();
        return { found: true, x: rect.left + rect.width / 2, y: rect.top + rect.height / 2 };
    }
    for (const label of document.querySelectorAll('label')) {
        if (!searchTexts.some(t => label.textContent.includes(t))) continue;
        if (label.offsetParent === null) continue;
        const rect = label.getBoundingClientRect();
        return { found: true, x: rect.left + rect.width / 2, y: rect.top + rect.height / 2 };
    }
    return { found: false };
})()`, jsStrings(texts), jsString(action))
}

// shareDropdownScript opens the blog/cafe share-mode dropdown, identified by
// its current value text (link-allowed or body-allowed).
const shareDropdownScript = `
(function() {
    const controls = document.querySelectorAll('button, [class*="dropdown"], [class*="select"]');
    for (const btn of controls) {
        const text = btn.textContent;
        if ((text.includes('링크') || text.includes('본문')) && text.includes('허용') && btn.offsetParent !== null) {
            const rect = btn.getBoundingClientRect();
            return { found: true, x: rect.left + rect.width / 2, y: rect.top + rect.height / 2 };
        }
    }
    return { found: false };
})()`

// shareOptionScript picks a share-mode dropdown entry by text.
func shareOptionScript(text string) string {
	return fmt.Sprintf(`
(function() {
    const target = %s;
    const options = document.querySelectorAll('li, option, [role="option"], [class*="item"]');
    for (const opt of options) {
        if (opt.textContent.includes(target) && opt.offsetParent !== null) {
            const rect = opt.getBoundingClientRect();
            return { found: true, x: rect.left + rect.width / 2, y: rect.top + rect.height / 2 };
        }
    }
    return { found: false };
})()`, jsString(text))
}

// confirmPublishScript clicks the dialog's final publish button. Priority:
// the stable test id, then the confirm-button class, then the class pattern,
// and last the lower of the duplicated publish-label buttons (the header
// button sits above the dialog's).
const confirmPublishScript = `
(function() {
    const direct = [
        '[data-testid="seOnePublishBtn"]',
        'button.confirm_btn__WEaBq',
        'button[class*="confirm_btn"]'
    ];
    for (const sel of direct) {
        const btn = document.querySelector(sel);
        if (btn && btn.offsetParent !== null) {
            btn.click();
            return { found: true };
        }
    }
    const candidates = [];
    for (const btn of document.querySelectorAll('button')) {
        if (btn.textContent.trim() === '발행' && btn.offsetParent !== null) {
            candidates.push({ el: btn, y: btn.getBoundingClientRect().top });
        }
    }
    if (candidates.length >= 2) {
        candidates.sort((a, b) => b.y - a.y);
        candidates[0].el.click();
        return { found: true };
    }
    return { found: false };
})()`

// frameTextSearchScript searches the post-list mainFrame (and the top
// document) for title.
func frameTextSearchScript(title string) string {
	return fmt.Sprintf(`
(function() {
    const searchTitle = %s;
    const mainFrame = document.getElementById('mainFrame');
    if (mainFrame && mainFrame.contentDocument) {
        const frameDoc = mainFrame.contentDocument;
        if (frameDoc.body.innerText.includes(searchTitle)) {
            return { found: true };
        }
        for (const link of frameDoc.querySelectorAll('a')) {
            if (link.textContent.trim().includes(searchTitle)) {
                return { found: true, href: link.href || '' };
            }
        }
    }
    if (document.body.innerText.includes(searchTitle)) {
        return { found: true };
    }
    return { found: false };
})()`, jsString(title))
}

// frameHTMLSearchScript is the last-resort verification pass: a raw
// substring search of the mainFrame markup.
func frameHTMLSearchScript(title string) string {
	return fmt.Sprintf(`
(function() {
    const searchTitle = %s;
    const mainFrame = document.getElementById('mainFrame');
    if (mainFrame && mainFrame.contentDocument) {
        if (mainFrame.contentDocument.body.innerHTML.includes(searchTitle)) {
            return { found: true };
        }
    }
    return { found: false };
})()`, jsString(title))
}
